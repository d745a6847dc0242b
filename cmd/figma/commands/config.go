package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/figma-client/internal/auth"
	"github.com/fivetwenty-io/figma-client/internal/client"
	"github.com/fivetwenty-io/figma-client/internal/constants"
	"github.com/fivetwenty-io/figma-client/pkg/figma"
	"github.com/fivetwenty-io/figma-client/pkg/figmaclient"
)

const configDirName = ".figma"

// Config represents the CLI configuration.
type Config struct {
	BaseURL     string `json:"base_url,omitempty"     yaml:"base_url,omitempty"`
	Token       string `json:"token,omitempty"        yaml:"token,omitempty"`
	TokenHeader string `json:"token_header,omitempty" yaml:"token_header,omitempty"`

	// OAuth2 refresh flow
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`

	// Request pipeline
	MaxRetries int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	CacheType  string `json:"cache_type,omitempty"  yaml:"cache_type,omitempty"`
	CacheTTL   string `json:"cache_ttl,omitempty"   yaml:"cache_ttl,omitempty"`
	NATSURL    string `json:"nats_url,omitempty"    yaml:"nats_url,omitempty"`

	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// configSetters maps settable keys to their parsers.
var configSetters = map[string]func(*Config, string) error{
	"base_url":      stringField(func(c *Config) *string { return &c.BaseURL }),
	"token":         stringField(func(c *Config) *string { return &c.Token }),
	"token_header":  stringField(func(c *Config) *string { return &c.TokenHeader }),
	"client_id":     stringField(func(c *Config) *string { return &c.ClientID }),
	"client_secret": stringField(func(c *Config) *string { return &c.ClientSecret }),
	"refresh_token": stringField(func(c *Config) *string { return &c.RefreshToken }),
	"nats_url":      stringField(func(c *Config) *string { return &c.NATSURL }),
	"max_retries": func(c *Config, v string) error {
		if v == "" {
			c.MaxRetries = 0

			return nil
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid max_retries %q: %w", v, err)
		}

		c.MaxRetries = n

		return nil
	},
	"cache_type": func(c *Config, v string) error {
		switch figma.CacheType(v) {
		case "", figma.CacheTypeMemory, figma.CacheTypeNATS, figma.CacheTypeTiered, figma.CacheTypeNone:
			c.CacheType = v

			return nil
		default:
			return fmt.Errorf("%w: %s", figma.ErrUnsupportedCacheType, v)
		}
	},
	"cache_ttl": func(c *Config, v string) error {
		if v != "" {
			_, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid cache_ttl %q: %w", v, err)
			}
		}

		c.CacheTTL = v

		return nil
	},
	"output": func(c *Config, v string) error {
		switch v {
		case "", constants.FormatJSON, constants.FormatYAML, constants.FormatTable:
			c.Output = v

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, v)
		}
	},
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v

		return nil
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage Figma CLI configuration including credentials and request settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			masked := *config
			masked.Token = mask(config.Token)
			masked.ClientSecret = mask(config.ClientSecret)
			masked.RefreshToken = mask(config.RefreshToken)

			return render(masked, func(table *tablewriter.Table) {
				table.Header("Key", "Value")

				_ = table.Append("base_url", orNA(masked.BaseURL))
				_ = table.Append("token", orNA(masked.Token))
				_ = table.Append("token_header", orNA(masked.TokenHeader))
				_ = table.Append("client_id", orNA(masked.ClientID))
				_ = table.Append("client_secret", orNA(masked.ClientSecret))
				_ = table.Append("refresh_token", orNA(masked.RefreshToken))
				_ = table.Append("max_retries", strconv.Itoa(masked.MaxRetries))
				_ = table.Append("cache_type", orNA(masked.CacheType))
				_ = table.Append("cache_ttl", orNA(masked.CacheTTL))
				_ = table.Append("nats_url", orNA(masked.NATSURL))
				_ = table.Append("output", orNA(masked.Output))
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so its default applies again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(args[0], "")
		},
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func updateConfigValue(key, value string) error {
	setter, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	config := loadConfig()

	err := setter(config, value)
	if err != nil {
		return err
	}

	err = saveConfigStruct(config)
	if err != nil {
		return err
	}

	viper.Set(key, value)

	if value == "" {
		_, _ = fmt.Fprintf(stdout, "Unset %s\n", key)
	} else {
		_, _ = fmt.Fprintf(stdout, "Set %s\n", key)
	}

	return nil
}

// loadConfig reads the merged file, environment and flag configuration.
func loadConfig() *Config {
	config := &Config{
		BaseURL:      viper.GetString("base_url"),
		Token:        viper.GetString("token"),
		TokenHeader:  viper.GetString("token_header"),
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		RefreshToken: viper.GetString("refresh_token"),
		MaxRetries:   viper.GetInt("max_retries"),
		CacheType:    viper.GetString("cache_type"),
		CacheTTL:     viper.GetString("cache_ttl"),
		NATSURL:      viper.GetString("nats_url"),
		Output:       viper.GetString("output"),
	}

	if viper.IsSet("token_expires_at") {
		expiresAt := viper.GetTime("token_expires_at")
		config.TokenExpiresAt = &expiresAt
	}

	if viper.IsSet("last_refreshed") {
		lastRefreshed := viper.GetTime("last_refreshed")
		config.LastRefreshed = &lastRefreshed
	}

	return config
}

// configFilePath returns the file in use or $HOME/.figma/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, configDirName)

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// buildFigmaConfig turns the CLI configuration into a client configuration.
func buildFigmaConfig(config *Config) (*figma.Config, error) {
	figmaConfig := figma.DefaultConfig()
	figmaConfig.AccessToken = config.Token
	figmaConfig.Debug = viper.GetBool("verbose")
	figmaConfig.Logger = NewLogger(os.Stderr, figmaConfig.Debug)

	if config.BaseURL != "" {
		figmaConfig.BaseURL = config.BaseURL
	}

	if config.TokenHeader != "" {
		figmaConfig.TokenHeader = config.TokenHeader
	}

	if config.MaxRetries != 0 {
		figmaConfig.MaxRetries = config.MaxRetries
	}

	if config.CacheTTL != "" {
		ttl, err := time.ParseDuration(config.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_ttl %q: %w", config.CacheTTL, err)
		}

		figmaConfig.CacheTTL = ttl
	}

	if config.CacheType != "" {
		builder := figma.NewCacheBuilder().
			WithType(figma.CacheType(config.CacheType)).
			WithTTL(figmaConfig.CacheTTL)

		switch figma.CacheType(config.CacheType) {
		case figma.CacheTypeNATS, figma.CacheTypeTiered:
			builder.WithNATSConfig(&figma.NATSKVConfig{URL: config.NATSURL})
		}

		figmaConfig.Cache = builder.Config()
	}

	if config.RefreshToken != "" {
		figmaConfig.OAuth2 = &figma.OAuth2Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RefreshToken: config.RefreshToken,
		}
	}

	return figmaConfig, nil
}

// CreateClient builds a client from the CLI configuration. OAuth2 credentials
// write refreshed tokens back to the config file.
func CreateClient(ctx context.Context) (figma.Client, error) {
	config := loadConfig()

	if config.Token == "" && config.RefreshToken == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	figmaConfig, err := buildFigmaConfig(config)
	if err != nil {
		return nil, err
	}

	if config.RefreshToken == "" {
		return figmaclient.New(ctx, figmaConfig)
	}

	oauth2Config := &auth.OAuth2Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.Token,
	}

	if config.TokenExpiresAt != nil {
		oauth2Config.ExpiresAt = *config.TokenExpiresAt
	}

	tokenManager := auth.NewConfigTokenManager(oauth2Config, NewConfigPersister())

	figmaClient, err := client.NewWithTokenManager(ctx, figmaConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return figmaClient, nil
}

// closeClient releases the client's cache connection when it holds one.
func closeClient(c figma.Client) {
	if closer, ok := c.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
