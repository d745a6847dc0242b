//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Token     string
	FileKey   string
	TeamID    string
	FigmaPath string
	Verbose   bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Token:     os.Getenv("FIGMA_TOKEN"),
		FileKey:   os.Getenv("FIGMA_FILE_KEY"),
		TeamID:    os.Getenv("FIGMA_TEAM_ID"),
		FigmaPath: getFigmaPath(),
		Verbose:   os.Getenv("FIGMA_VERBOSE") == "true",
	}
}

// getFigmaPath determines the path to the figma binary
func getFigmaPath() string {
	if path := os.Getenv("FIGMA_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../figma", "./figma", "../figma"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "figma"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Token == "" || config.FileKey == "" {
		t.Skip("FIGMA_TOKEN or FIGMA_FILE_KEY not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.FigmaPath); err != nil {
		t.Skipf("figma binary not found at %s, skipping integration test", config.FigmaPath)
	}
}

// CommandRunner runs the figma binary against the live API
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes a figma command with an isolated config file and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile()}, args...)

	cmd := exec.Command(runner.config.FigmaPath, args...) //nolint:gosec // test binary path
	cmd.Env = append(os.Environ(), "FIGMA_TOKEN="+runner.config.Token)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.FigmaPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

func (runner *CommandRunner) configFile() string {
	path := filepath.Join(runner.t.TempDir(), "config.yml")

	_ = os.WriteFile(path, []byte("output: json\n"), 0o600)

	return path
}

// DecodeJSON unmarshals command output, failing the test when it is not JSON
func DecodeJSON(t *testing.T, output string, v any) {
	t.Helper()

	err := json.Unmarshal([]byte(strings.TrimSpace(output)), v)
	if err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, output)
	}
}
