package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Masked       = "***"
)

// Common static errors used throughout the commands package.
var (
	ErrWebhookRequired     = errors.New("webhook ID is required")
	ErrGroupByRequired     = errors.New("--group-by is required")
	ErrItemsKeyRequired    = errors.New("--items-key is required with --paginate")
	ErrPaginateRequiresGET = errors.New("--paginate only supports GET requests")
	ErrPaginateWithData    = errors.New("--data cannot be combined with --paginate")
)

// stdout is swapped by tests.
var stdout io.Writer = os.Stdout

func isTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd())) //nolint:gosec // file descriptors fit in int
}

// outputFormat returns the configured format. Without one, terminals get a
// table and pipes get JSON.
func outputFormat() (string, error) {
	output := strings.ToLower(strings.TrimSpace(viper.GetString("output")))

	switch output {
	case constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
		return output, nil
	case "":
		if file, ok := stdout.(*os.File); ok && isTerminal(file) {
			return constants.FormatTable, nil
		}

		return constants.FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutput, output)
	}
}

// render prints data as JSON or YAML, or fills a table through table.
func render(data interface{}, table func(*tablewriter.Table)) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(stdout)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(data)
	default:
		writer := tablewriter.NewWriter(stdout)
		table(writer)

		err := writer.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// renderRaw prints an API body. Table output falls back to indented JSON.
func renderRaw(body json.RawMessage) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format == constants.FormatYAML {
		var value interface{}

		err := json.Unmarshal(body, &value)
		if err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		encoder := yaml.NewEncoder(stdout)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	}

	if len(body) == 0 {
		return nil
	}

	var indented strings.Builder

	encoder := json.NewEncoder(&indented)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err = encoder.Encode(body)
	if err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}

	_, err = io.WriteString(stdout, indented.String())

	return err
}

// parseParams turns key=value pairs into request params.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
		}

		params[strings.TrimSpace(key)] = value
	}

	return params, nil
}

func orNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func mask(value string) string {
	if value == "" {
		return ""
	}

	return Masked
}
