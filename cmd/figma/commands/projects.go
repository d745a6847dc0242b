package commands

import (
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "proj"},
		Short:   "Browse team projects",
		Long:    "List the projects of a team and the files inside a project",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsFilesCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list TEAM_ID",
		Short: "List team projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			projects, err := client.Projects().ListTeamProjects(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(projects, func(table *tablewriter.Table) {
				table.Header("ID", "Name")

				for _, project := range projects.Projects {
					_ = table.Append(project.ID, project.Name)
				}
			})
		},
	}
}

func newProjectsFilesCommand() *cobra.Command {
	var branchData bool

	cmd := &cobra.Command{
		Use:   "files PROJECT_ID",
		Short: "List project files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			files, err := client.Projects().ListProjectFiles(cmd.Context(), args[0], branchData)
			if err != nil {
				return err
			}

			return render(files, func(table *tablewriter.Table) {
				table.Header("Key", "Name", "Last Modified")

				for _, file := range files.Files {
					_ = table.Append(file.Key, file.Name, file.LastModified.Format(time.RFC3339))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&branchData, "branch-data", false, "include branch metadata")

	return cmd
}
