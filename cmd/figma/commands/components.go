package commands

import (
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/figma-client/internal/constants"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// NewComponentsCommand creates the components command group.
func NewComponentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"component", "comp"},
		Short:   "Browse published library components",
		Long:    "List and inspect components, component sets and styles published to team libraries",
	}

	cmd.AddCommand(newComponentsListCommand())
	cmd.AddCommand(newComponentsGetCommand())
	cmd.AddCommand(newComponentsFileCommand())
	cmd.AddCommand(newComponentsSetsCommand())
	cmd.AddCommand(newComponentsStylesCommand())

	return cmd
}

// ComponentsListOptions holds the options for listing team components.
type ComponentsListOptions struct {
	All      bool
	PageSize int
	After    int
}

func newComponentsListCommand() *cobra.Command {
	var opts ComponentsListOptions

	cmd := &cobra.Command{
		Use:   "list TEAM_ID",
		Short: "List team components",
		Long:  "List components published to a team library, one page at a time or all at once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponentsList(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "fetch every page")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", constants.DefaultPageSize, "number of components per page")
	cmd.Flags().IntVar(&opts.After, "after", 0, "cursor returned by the previous page")

	return cmd
}

func runComponentsList(cmd *cobra.Command, teamID string, opts ComponentsListOptions) error {
	client, err := CreateClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeClient(client)

	if opts.All {
		components, err := client.Components().ListAllTeamComponents(cmd.Context(), teamID)
		if err != nil {
			return err
		}

		return renderComponents(components)
	}

	page, err := client.Components().ListTeamComponents(cmd.Context(), teamID, &figma.PageParams{
		PageSize: opts.PageSize,
		After:    opts.After,
	})
	if err != nil {
		return err
	}

	err = renderComponents(page.Components)
	if err != nil {
		return err
	}

	if page.Cursor != nil && page.Cursor.After > 0 {
		cmd.PrintErrf("More results available, use --after %d\n", page.Cursor.After)
	}

	return nil
}

func renderComponents(components []figma.PublishedComponent) error {
	return render(components, func(table *tablewriter.Table) {
		table.Header("Key", "Name", "File", "Frame", "Updated")

		for _, component := range components {
			frame := NotAvailable
			if component.ContainingFrame != nil {
				frame = orNA(component.ContainingFrame.Name)
			}

			_ = table.Append(component.Key, component.Name, component.FileKey, frame, component.UpdatedAt.Format(time.RFC3339))
		}
	})
}

func newComponentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a published component",
		Long:  "Display the metadata of a published component by its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			component, err := client.Components().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(component, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Key", component.Key)
				_ = table.Append("Name", component.Name)
				_ = table.Append("Description", orNA(component.Description))
				_ = table.Append("File", component.FileKey)
				_ = table.Append("Node", component.NodeID)
				_ = table.Append("Author", orNA(component.User.Handle))
				_ = table.Append("Created", component.CreatedAt.Format(time.RFC3339))
				_ = table.Append("Updated", component.UpdatedAt.Format(time.RFC3339))
			})
		},
	}
}

func newComponentsFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "file FILE_KEY",
		Short: "List components published from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			components, err := client.Components().ListFileComponents(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderComponents(components)
		},
	}
}

func newComponentsSetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sets TEAM_ID",
		Short: "List team component sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			sets, err := client.Components().ListTeamComponentSets(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return renderComponents(sets)
		},
	}
}

func newComponentsStylesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "styles TEAM_ID",
		Short: "List team styles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			styles, err := client.Components().ListTeamStyles(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(styles, func(table *tablewriter.Table) {
				table.Header("Key", "Name", "Type", "File", "Position")

				for _, style := range styles {
					_ = table.Append(style.Key, style.Name, style.StyleType, style.FileKey, orNA(style.SortPosition))
				}
			})
		},
	}
}
