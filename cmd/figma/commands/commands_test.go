package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/figma-client/cmd/figma/commands"
)

func TestNewFilesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewFilesCommand()
	assert.Equal(t, "files", cmd.Use)
	assert.Equal(t, []string{"file", "f"}, cmd.Aliases)
	assert.Equal(t, "Read Figma files", cmd.Short)

	assert.ElementsMatch(t, []string{"get", "nodes", "images", "versions", "comments", "comment"}, subcommandNames(cmd))

	get := findSubcommand(cmd, "get")
	require.NotNil(t, get)
	assert.NotNil(t, get.Flags().Lookup("depth"))
	assert.NotNil(t, get.Flags().Lookup("version"))
	assert.NotNil(t, get.Flags().Lookup("branch-data"))

	images := findSubcommand(cmd, "images")
	require.NotNil(t, images)

	scale := images.Flags().Lookup("scale")
	require.NotNil(t, scale)
	assert.Equal(t, "1", scale.DefValue)
	assert.Equal(t, "png", images.Flags().Lookup("format").DefValue)

	comment := findSubcommand(cmd, "comment")
	require.NotNil(t, comment)
	assert.NotNil(t, comment.Flags().Lookup("reply-to"))
}

func TestNewComponentsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewComponentsCommand()
	assert.Equal(t, "components", cmd.Use)
	assert.Contains(t, cmd.Aliases, "comp")

	assert.ElementsMatch(t, []string{"list", "get", "file", "sets", "styles"}, subcommandNames(cmd))

	list := findSubcommand(cmd, "list")
	require.NotNil(t, list)
	assert.Equal(t, "30", list.Flags().Lookup("page-size").DefValue)
	assert.Equal(t, "false", list.Flags().Lookup("all").DefValue)
	assert.NotNil(t, list.Flags().Lookup("after"))
}

func TestNewProjectsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewProjectsCommand()
	assert.Equal(t, "projects", cmd.Use)
	assert.ElementsMatch(t, []string{"list", "files"}, subcommandNames(cmd))

	files := findSubcommand(cmd, "files")
	require.NotNil(t, files)
	assert.NotNil(t, files.Flags().Lookup("branch-data"))
}

func TestNewVariablesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVariablesCommand()
	assert.Equal(t, "variables", cmd.Use)
	assert.ElementsMatch(t, []string{"local", "published", "update"}, subcommandNames(cmd))

	update := findSubcommand(cmd, "update")
	require.NotNil(t, update)
	assert.Equal(t, "f", update.Flags().Lookup("file").Shorthand)
}

func TestNewWebhooksCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewWebhooksCommand()
	assert.Equal(t, "webhooks", cmd.Use)
	assert.ElementsMatch(t, []string{"list", "get", "create", "delete", "requests"}, subcommandNames(cmd))

	create := findSubcommand(cmd, "create")
	require.NotNil(t, create)

	for _, name := range []string{"team", "event", "endpoint", "passcode", "description", "paused"} {
		assert.NotNil(t, create.Flags().Lookup(name), name)
	}
}

func TestNewAnalyticsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAnalyticsCommand()
	assert.Equal(t, "analytics", cmd.Use)
	assert.ElementsMatch(t, []string{"component-actions", "component-usages", "style-actions", "variable-actions"}, subcommandNames(cmd))

	for _, subcmd := range cmd.Commands() {
		assert.NotNil(t, subcmd.Flags().Lookup("group-by"), subcmd.Name())
		assert.NotNil(t, subcmd.Flags().Lookup("start-date"), subcmd.Name())
		assert.NotNil(t, subcmd.Flags().Lookup("end-date"), subcmd.Name())
	}
}

func TestNewAPICommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAPICommand()
	assert.Equal(t, "api METHOD PATH", cmd.Use)
	assert.NotEmpty(t, cmd.Example)

	for _, name := range []string{"param", "data", "paginate", "items-key", "cursor-param", "max-pages", "no-cache", "cache-ttl", "header"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewCacheCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewCacheCommand()
	assert.Equal(t, "cache", cmd.Use)
	assert.ElementsMatch(t, []string{"stats", "invalidate", "clear"}, subcommandNames(cmd))
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.ElementsMatch(t, []string{"show", "set", "unset"}, subcommandNames(cmd))

	set := findSubcommand(cmd, "set")
	require.NotNil(t, set)
	assert.Contains(t, set.Long, "max_retries")
	assert.Contains(t, set.Long, "cache_type")
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.0.0", "abc123", "2024-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
}
