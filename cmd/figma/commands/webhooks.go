package commands

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// NewWebhooksCommand creates the webhooks command group.
func NewWebhooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "webhooks",
		Aliases: []string{"webhook", "wh"},
		Short:   "Manage team webhooks",
		Long:    "Create, inspect and remove webhooks and review their delivery history",
	}

	cmd.AddCommand(newWebhooksListCommand())
	cmd.AddCommand(newWebhooksGetCommand())
	cmd.AddCommand(newWebhooksCreateCommand())
	cmd.AddCommand(newWebhooksDeleteCommand())
	cmd.AddCommand(newWebhooksRequestsCommand())

	return cmd
}

func newWebhooksListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list TEAM_ID",
		Short: "List team webhooks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			webhooks, err := client.Webhooks().ListTeam(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(webhooks, func(table *tablewriter.Table) {
				table.Header("ID", "Event", "Status", "Endpoint")

				for _, webhook := range webhooks {
					_ = table.Append(webhook.ID, webhook.EventType, webhook.Status, webhook.Endpoint)
				}
			})
		},
	}
}

func newWebhooksGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get WEBHOOK_ID",
		Short: "Get webhook details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			webhook, err := client.Webhooks().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			webhook.Passcode = mask(webhook.Passcode)

			return render(webhook, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", webhook.ID)
				_ = table.Append("Event", webhook.EventType)
				_ = table.Append("Team", webhook.TeamID)
				_ = table.Append("Status", webhook.Status)
				_ = table.Append("Endpoint", webhook.Endpoint)
				_ = table.Append("Description", orNA(webhook.Description))
			})
		},
	}
}

// WebhooksCreateOptions holds the options for creating a webhook.
type WebhooksCreateOptions struct {
	TeamID      string
	EventType   string
	Endpoint    string
	Passcode    string
	Description string
	Paused      bool
}

func newWebhooksCreateCommand() *cobra.Command {
	var opts WebhooksCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a webhook",
		Long:  "Subscribe an endpoint to the events of a team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			request := &figma.WebhookCreateRequest{
				EventType:   opts.EventType,
				TeamID:      opts.TeamID,
				Endpoint:    opts.Endpoint,
				Passcode:    opts.Passcode,
				Description: opts.Description,
			}
			if opts.Paused {
				request.Status = "PAUSED"
			}

			webhook, err := client.Webhooks().Create(cmd.Context(), request)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(stdout, "Created webhook %s for %s\n", webhook.ID, webhook.EventType)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.TeamID, "team", "", "team to watch")
	cmd.Flags().StringVar(&opts.EventType, "event", "", "event type, e.g. FILE_UPDATE or LIBRARY_PUBLISH")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "URL receiving the events")
	cmd.Flags().StringVar(&opts.Passcode, "passcode", "", "passcode echoed in every payload")
	cmd.Flags().StringVar(&opts.Description, "description", "", "webhook description")
	cmd.Flags().BoolVar(&opts.Paused, "paused", false, "create the webhook in the paused state")

	for _, name := range []string{"team", "event", "endpoint", "passcode"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newWebhooksDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete WEBHOOK_ID",
		Short: "Delete a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return ErrWebhookRequired
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			err = client.Webhooks().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(stdout, "Deleted webhook %s\n", args[0])

			return nil
		},
	}
}

func newWebhooksRequestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "requests WEBHOOK_ID",
		Short: "List webhook deliveries",
		Long:  "List the deliveries of a webhook from the last week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			requests, err := client.Webhooks().ListRequests(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(requests, func(table *tablewriter.Table) {
				table.Header("Request", "Sent", "Status", "Error")

				for _, request := range requests {
					status := NotAvailable
					if request.ResponseInfo != nil {
						status = orNA(request.ResponseInfo.Status)
					}

					_ = table.Append(request.RequestInfo.ID, request.RequestInfo.SentAt.Format(time.RFC3339), status, orNA(request.Error))
				}
			})
		},
	}
}
