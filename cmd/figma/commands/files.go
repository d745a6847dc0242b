package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// NewFilesCommand creates the files command group.
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file", "f"},
		Short:   "Read Figma files",
		Long:    "Read files, nodes, rendered images, versions and comments",
	}

	cmd.AddCommand(newFilesGetCommand())
	cmd.AddCommand(newFilesNodesCommand())
	cmd.AddCommand(newFilesImagesCommand())
	cmd.AddCommand(newFilesVersionsCommand())
	cmd.AddCommand(newFilesCommentsCommand())
	cmd.AddCommand(newFilesCommentCommand())

	return cmd
}

// FilesGetOptions holds the options for reading a file.
type FilesGetOptions struct {
	Depth      int
	Version    string
	BranchData bool
}

func newFilesGetCommand() *cobra.Command {
	var opts FilesGetOptions

	cmd := &cobra.Command{
		Use:   "get FILE_KEY",
		Short: "Get file details",
		Long:  "Display the name, version and published components of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			file, err := client.Files().Get(cmd.Context(), args[0], &figma.GetFileParams{
				Depth:      opts.Depth,
				Version:    opts.Version,
				BranchData: opts.BranchData,
			})
			if err != nil {
				return err
			}

			return render(file, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", file.Name)
				_ = table.Append("Role", orNA(file.Role))
				_ = table.Append("Editor", orNA(file.EditorType))
				_ = table.Append("Version", file.Version)
				_ = table.Append("Last Modified", file.LastModified.Format(time.RFC3339))
				_ = table.Append("Components", strconv.Itoa(len(file.Components)))
				_ = table.Append("Component Sets", strconv.Itoa(len(file.ComponentSets)))
				_ = table.Append("Styles", strconv.Itoa(len(file.Styles)))
			})
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "how deep into the document tree to traverse")
	cmd.Flags().StringVar(&opts.Version, "version", "", "read a specific version")
	cmd.Flags().BoolVar(&opts.BranchData, "branch-data", false, "include branch metadata")

	return cmd
}

func newFilesNodesCommand() *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "nodes FILE_KEY",
		Short: "Get file nodes",
		Long:  "Display the subtrees of the given node IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			nodes, err := client.Files().GetNodes(cmd.Context(), args[0], ids, nil)
			if err != nil {
				return err
			}

			return render(nodes, func(table *tablewriter.Table) {
				table.Header("Node ID", "Components", "Styles")

				for _, id := range ids {
					node, ok := nodes.Nodes[id]
					if !ok {
						_ = table.Append(id, NotAvailable, NotAvailable)

						continue
					}

					_ = table.Append(id, strconv.Itoa(len(node.Components)), strconv.Itoa(len(node.Styles)))
				}
			})
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "comma separated node IDs")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

// FilesImagesOptions holds the options for rendering images.
type FilesImagesOptions struct {
	IDs    []string
	Scale  float64
	Format string
}

func newFilesImagesCommand() *cobra.Command {
	var opts FilesImagesOptions

	cmd := &cobra.Command{
		Use:   "images FILE_KEY",
		Short: "Render nodes as images",
		Long:  "Render nodes and display the URLs of the produced images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			images, err := client.Files().GetImages(cmd.Context(), args[0], &figma.ImageParams{
				IDs:    opts.IDs,
				Scale:  opts.Scale,
				Format: opts.Format,
			})
			if err != nil {
				return err
			}

			return render(images, func(table *tablewriter.Table) {
				table.Header("Node ID", "URL")

				for _, id := range opts.IDs {
					imageURL := NotAvailable
					if u := images.Images[id]; u != nil {
						imageURL = *u
					}

					_ = table.Append(id, imageURL)
				}
			})
		},
	}

	cmd.Flags().StringSliceVar(&opts.IDs, "ids", nil, "comma separated node IDs")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 1, "image scale between 0.01 and 4")
	cmd.Flags().StringVar(&opts.Format, "format", "png", "image format (jpg, png, svg, pdf)")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

func newFilesVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions FILE_KEY",
		Short: "List file versions",
		Long:  "List the version history of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			versions, err := client.Files().ListVersions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(versions, func(table *tablewriter.Table) {
				table.Header("ID", "Label", "User", "Created")

				for _, version := range versions {
					_ = table.Append(version.ID, orNA(version.Label), version.User.Handle, version.CreatedAt.Format(time.RFC3339))
				}
			})
		},
	}
}

func newFilesCommentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comments FILE_KEY",
		Short: "List file comments",
		Long:  "List the comments left on a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			comments, err := client.Files().ListComments(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(comments, func(table *tablewriter.Table) {
				table.Header("ID", "User", "Message", "Resolved", "Created")

				for _, comment := range comments {
					resolved := "no"
					if comment.ResolvedAt != nil {
						resolved = "yes"
					}

					_ = table.Append(comment.ID, comment.User.Handle, truncate(comment.Message, 60), resolved, comment.CreatedAt.Format(time.RFC3339))
				}
			})
		},
	}
}

func newFilesCommentCommand() *cobra.Command {
	var replyTo string

	cmd := &cobra.Command{
		Use:   "comment FILE_KEY MESSAGE",
		Short: "Post a comment",
		Long:  "Post a comment on a file, or reply to an existing comment",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // file key and message
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			comment, err := client.Files().PostComment(cmd.Context(), args[0], &figma.CommentCreateRequest{
				Message:   strings.Join(args[1:], " "),
				CommentID: replyTo,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(stdout, "Posted comment %s\n", comment.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&replyTo, "reply-to", "", "ID of the comment to reply to")

	return cmd
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-1]) + "…"
}
