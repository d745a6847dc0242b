package commands

import (
	"context"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// NewAnalyticsCommand creates the library analytics command group.
func NewAnalyticsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"library-analytics"},
		Short:   "Read library analytics",
		Long:    "Read usage and action reports for components, styles and variables of a library file",
	}

	reports := []struct {
		use   string
		short string
		fetch func(figma.AnalyticsClient) analyticsFetch
	}{
		{"component-actions", "Weekly component insertions and detachments", func(c figma.AnalyticsClient) analyticsFetch { return c.ComponentActions }},
		{"component-usages", "Current component usages", func(c figma.AnalyticsClient) analyticsFetch { return c.ComponentUsages }},
		{"style-actions", "Weekly style insertions and detachments", func(c figma.AnalyticsClient) analyticsFetch { return c.StyleActions }},
		{"variable-actions", "Weekly variable insertions and detachments", func(c figma.AnalyticsClient) analyticsFetch { return c.VariableActions }},
	}

	for _, report := range reports {
		cmd.AddCommand(newAnalyticsReportCommand(report.use, report.short, report.fetch))
	}

	return cmd
}

type analyticsFetch func(ctx context.Context, fileKey string, params *figma.AnalyticsParams) ([]figma.AnalyticsRow, error)

// AnalyticsOptions holds the filters shared by every report.
type AnalyticsOptions struct {
	GroupBy   string
	StartDate string
	EndDate   string
}

func newAnalyticsReportCommand(use, short string, fetch func(figma.AnalyticsClient) analyticsFetch) *cobra.Command {
	var opts AnalyticsOptions

	cmd := &cobra.Command{
		Use:   use + " FILE_KEY",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.GroupBy == "" {
				return ErrGroupByRequired
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			rows, err := fetch(client.Analytics())(cmd.Context(), args[0], &figma.AnalyticsParams{
				GroupBy:   opts.GroupBy,
				StartDate: opts.StartDate,
				EndDate:   opts.EndDate,
			})
			if err != nil {
				return err
			}

			return renderAnalytics(rows)
		},
	}

	cmd.Flags().StringVar(&opts.GroupBy, "group-by", "", "grouping, e.g. component, style, variable or team")
	cmd.Flags().StringVar(&opts.StartDate, "start-date", "", "first week to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.EndDate, "end-date", "", "last week to include (YYYY-MM-DD)")

	return cmd
}

func renderAnalytics(rows []figma.AnalyticsRow) error {
	return render(rows, func(table *tablewriter.Table) {
		table.Header("Week", "Name", "Team", "Insertions", "Detachments", "Usages")

		for _, row := range rows {
			_ = table.Append(
				orNA(row.Week),
				orNA(analyticsName(row)),
				orNA(row.TeamName),
				strconv.Itoa(row.Insertions),
				strconv.Itoa(row.Detachments),
				strconv.Itoa(row.Usages),
			)
		}
	})
}

func analyticsName(row figma.AnalyticsRow) string {
	for _, name := range []string{row.ComponentName, row.ComponentSetName, row.StyleName, row.VariableName, row.CollectionName} {
		if name != "" {
			return name
		}
	}

	return ""
}
