package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/figma-client/pkg/figma"
)

// NewVariablesCommand creates the variables command group.
func NewVariablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "variables",
		Aliases: []string{"variable", "vars"},
		Short:   "Read and change file variables",
		Long:    "List local and published variables of a file and apply bulk variable changes",
	}

	cmd.AddCommand(newVariablesLocalCommand())
	cmd.AddCommand(newVariablesPublishedCommand())
	cmd.AddCommand(newVariablesUpdateCommand())

	return cmd
}

func newVariablesLocalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "local FILE_KEY",
		Short: "List local variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			local, err := client.Variables().GetLocal(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(local, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "Type", "Collection")

				for _, id := range sortedKeys(local.Variables) {
					variable := local.Variables[id]

					collection := variable.VariableCollectionID
					if c, ok := local.VariableCollections[collection]; ok {
						collection = c.Name
					}

					_ = table.Append(id, variable.Name, variable.ResolvedType, orNA(collection))
				}
			})
		},
	}
}

func newVariablesPublishedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "published FILE_KEY",
		Short: "List published variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			published, err := client.Variables().GetPublished(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render(published, func(table *tablewriter.Table) {
				table.Header("ID", "Subscribed ID", "Name", "Type")

				for _, id := range sortedKeys(published.Variables) {
					variable := published.Variables[id]
					_ = table.Append(id, variable.SubscribedID, variable.Name, variable.ResolvedDataType)
				}
			})
		},
	}
}

func newVariablesUpdateCommand() *cobra.Command {
	var changesFile string

	cmd := &cobra.Command{
		Use:   "update FILE_KEY",
		Short: "Apply bulk variable changes",
		Long:  "Apply a JSON document of variable collection, mode and value changes. Use --file - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := readVariablesUpdate(cmd, changesFile)
			if err != nil {
				return err
			}

			client, err := CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			result, err := client.Variables().Update(cmd.Context(), args[0], request)
			if err != nil {
				return err
			}

			return render(result, func(table *tablewriter.Table) {
				table.Header("Temporary ID", "ID")

				for _, tempID := range sortedKeys(result.TempIDToRealID) {
					_ = table.Append(tempID, result.TempIDToRealID[tempID])
				}
			})
		},
	}

	cmd.Flags().StringVarP(&changesFile, "file", "f", "", "JSON file with the changes")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readVariablesUpdate(cmd *cobra.Command, path string) (*figma.VariablesUpdateRequest, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path comes from the user
	}

	if err != nil {
		return nil, fmt.Errorf("reading variable changes: %w", err)
	}

	var raw struct {
		VariableCollections []map[string]any          `json:"variableCollections"`
		VariableModes       []map[string]any          `json:"variableModes"`
		Variables           []map[string]any          `json:"variables"`
		VariableModeValues  []figma.VariableModeValue `json:"variableModeValues"`
	}

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("decoding variable changes: %w", err)
	}

	return &figma.VariablesUpdateRequest{
		VariableCollections: toVariableChanges(raw.VariableCollections),
		VariableModes:       toVariableChanges(raw.VariableModes),
		Variables:           toVariableChanges(raw.Variables),
		VariableModeValues:  raw.VariableModeValues,
	}, nil
}

func toVariableChanges(entries []map[string]any) []figma.VariableChange {
	changes := make([]figma.VariableChange, 0, len(entries))

	for _, entry := range entries {
		change := figma.VariableChange{Fields: map[string]any{}}

		for key, value := range entry {
			switch key {
			case "action":
				change.Action, _ = value.(string)
			case "id":
				change.ID, _ = value.(string)
			default:
				change.Fields[key] = value
			}
		}

		changes = append(changes, change)
	}

	return changes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
