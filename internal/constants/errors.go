package constants

import "errors"

// CLI configuration errors.
var (
	ErrNoTokenConfigured = errors.New("no access token configured, set FIGMA_TOKEN or use 'figma config set token <value>'")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
	ErrInvalidOutput     = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidParam      = errors.New("invalid query parameter, expected key=value")
	ErrInvalidMethod     = errors.New("invalid HTTP method")
	ErrInvalidBody       = errors.New("request body is not valid JSON")
)
