package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/figma-client/internal/constants"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

var apiMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// APIOptions holds the options for a raw API request.
type APIOptions struct {
	Params      []string
	Data        string
	Paginate    bool
	ItemsKey    string
	CursorParam string
	MaxPages    int
	NoCache     bool
	CacheTTL    time.Duration
	Headers     []string
}

// NewAPICommand creates the raw API command.
func NewAPICommand() *cobra.Command {
	var opts APIOptions

	cmd := &cobra.Command{
		Use:   "api METHOD PATH",
		Short: "Send a request to any API endpoint",
		Long: `Send an authenticated request through the client pipeline.

Requests are throttled, retried and cached like any other client call.
With --paginate every page of a cursor paginated GET listing is fetched
and the items found at --items-key are printed as one array. The cursor is
sent back as "after" for team library listings and as "cursor" otherwise;
--cursor-param overrides it.`,
		Example: `  figma api GET /v1/me
  figma api GET /v1/teams/123/styles --paginate --items-key meta.styles
  figma api GET /v1/analytics/libraries/abc/component/usages -p group_by=component \
    --paginate --items-key rows --cursor-param cursor --max-pages 5
  figma api POST /v1/files/abc/comments --data '{"message":"hi"}'`,
		Args: cobra.ExactArgs(2), //nolint:mnd // method and path
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPICommand(cmd, strings.ToUpper(args[0]), args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "JSON request body")
	cmd.Flags().BoolVar(&opts.Paginate, "paginate", false, "follow cursors and print every item")
	cmd.Flags().StringVar(&opts.ItemsKey, "items-key", "", "dotted path of the items array in each page")
	cmd.Flags().StringVar(&opts.CursorParam, "cursor-param", "", "query parameter that carries the page cursor")
	cmd.Flags().IntVar(&opts.MaxPages, "max-pages", 0, "stop after this many pages (0 fetches all)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().DurationVar(&opts.CacheTTL, "cache-ttl", 0, "cache lifetime for this response")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "extra header as Name:Value (repeatable)")

	return cmd
}

func runAPICommand(cmd *cobra.Command, method, path string, opts APIOptions) error {
	if !slices.Contains(apiMethods, method) {
		return fmt.Errorf("%w: %s", constants.ErrInvalidMethod, method)
	}

	if opts.Paginate {
		err := validatePaginate(method, opts)
		if err != nil {
			return err
		}
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	var body any

	if opts.Data != "" {
		if !json.Valid([]byte(opts.Data)) {
			return constants.ErrInvalidBody
		}

		body = json.RawMessage(opts.Data)
	}

	requestOpts, err := apiRequestOptions(opts)
	if err != nil {
		return err
	}

	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeClient(client)

	if opts.Paginate {
		items := []json.RawMessage{}

		pageOpts := []figma.PaginateOption{
			figma.WithCursorParam(opts.CursorParam),
			figma.WithMaxPages(opts.MaxPages),
			figma.WithPageRequestOptions(requestOpts...),
		}

		for page, err := range client.Paginate(cmd.Context(), method, path, params, opts.ItemsKey, pageOpts...) {
			if err != nil {
				return err
			}

			items = append(items, page...)
		}

		all, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("encoding items: %w", err)
		}

		return renderRaw(all)
	}

	response, err := client.Execute(cmd.Context(), method, path, params, body, requestOpts...)
	if err != nil {
		return err
	}

	return renderRaw(response)
}

func validatePaginate(method string, opts APIOptions) error {
	switch {
	case method != http.MethodGet:
		return fmt.Errorf("%w: got %s", ErrPaginateRequiresGET, method)
	case opts.ItemsKey == "":
		return ErrItemsKeyRequired
	case opts.Data != "":
		return ErrPaginateWithData
	default:
		return nil
	}
}

func apiRequestOptions(opts APIOptions) ([]figma.RequestOption, error) {
	var requestOpts []figma.RequestOption

	if opts.NoCache {
		requestOpts = append(requestOpts, figma.WithoutCache())
	}

	if opts.CacheTTL > 0 {
		requestOpts = append(requestOpts, figma.WithRequestCacheTTL(opts.CacheTTL))
	}

	for _, header := range opts.Headers {
		name, value, ok := strings.Cut(header, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: header %q, expected Name:Value", constants.ErrInvalidParam, header)
		}

		requestOpts = append(requestOpts, figma.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}

	return requestOpts, nil
}
