// Package config provides configuration management for the GitHub client.
// It supports environment variable-based configuration with validation and
// default values for the OAuth application, HTTP transport, response cache,
// authentication policy, and logging settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// MinStateLength is the minimum length of the OAuth anti-forgery
	// state token.
	MinStateLength = 20

	// MinPortNumber is the minimum valid port number.
	MinPortNumber = 1
	// MaxPortNumber is the maximum valid port number.
	MaxPortNumber = 65535
)

// Config aggregates all component-specific configuration for the client.
type Config struct {
	// GitHub contains the OAuth application credentials and API endpoints.
	GitHub GitHubConfig `envconfig:"GITHUB"`
	// HTTP contains transport settings for outbound requests.
	HTTP HTTPConfig `envconfig:"HTTP"`
	// Cache contains response cache tuning.
	Cache CacheConfig `envconfig:"CACHE"`
	// Auth contains authentication policy settings.
	Auth AuthConfig `envconfig:"AUTH"`
	// Logging contains logging configuration.
	Logging LoggingConfig `envconfig:"LOGGING"`
}

// GitHubConfig holds the OAuth application credentials and the provider's
// endpoint URLs.
type GitHubConfig struct {
	// ClientID is the OAuth application client ID.
	ClientID string `envconfig:"CLIENT_ID"`
	// ClientSecret is the OAuth application client secret.
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	// AuthorizeURL is the interactive authorization endpoint.
	AuthorizeURL string `envconfig:"AUTHORIZE_URL" default:"https://github.com/login/oauth/authorize"`
	// TokenURL is the authorization-code exchange endpoint.
	TokenURL string `envconfig:"TOKEN_URL"     default:"https://github.com/login/oauth/access_token"`
	// APIBaseURL is the REST API base URL.
	APIBaseURL string `envconfig:"API_BASE_URL"  default:"https://api.github.com"`
	// Scopes are the OAuth scopes requested during login.
	Scopes []string `envconfig:"SCOPES"        default:"user,repo"`
	// CallbackPort is the port for the local OAuth callback server.
	// Zero selects a random available port.
	CallbackPort int `envconfig:"CALLBACK_PORT" default:"0"`
}

// HTTPConfig holds outbound HTTP transport settings.
type HTTPConfig struct {
	// Timeout is the per-request timeout for API calls.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
	// MetricsPort exposes the Prometheus metrics endpoint when non-zero.
	MetricsPort int `envconfig:"METRICS_PORT" default:"0"`
}

// CacheConfig holds response cache tuning.
type CacheConfig struct {
	// TTL is the maximum age before a cached response is treated as stale.
	TTL time.Duration `envconfig:"TTL"      default:"300s"`
	// Capacity is the maximum number of cached responses.
	Capacity int `envconfig:"CAPACITY" default:"100"`
}

// AuthConfig holds authentication policy settings.
type AuthConfig struct {
	// TrustedEnvironment allows the presence of a stored token to imply an
	// authenticated session at startup without re-validation. Leave false
	// on any device that could be stolen; a local secondary check is then
	// required before the stored token is trusted.
	TrustedEnvironment bool `envconfig:"TRUSTED_ENVIRONMENT" default:"false"`
	// LoginTimeout bounds how long a login flow waits for the interactive
	// authorization callback.
	LoginTimeout time.Duration `envconfig:"LOGIN_TIMEOUT" default:"5m"`
	// CredentialKey is the well-known key the access token is stored
	// under in the platform secret store.
	CredentialKey string `envconfig:"CREDENTIAL_KEY" default:"github_oauth_token"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `envconfig:"LEVEL"  default:"info"`
	// Format selects the log format (json, text).
	Format string `envconfig:"FORMAT" default:"json"`
	// Output selects the log destination (stdout, stderr).
	Output string `envconfig:"OUTPUT" default:"stdout"`
}

// Load reads configuration from environment variables with the GITHUB_GO
// prefix and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("GITHUB_GO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for inconsistencies that would only
// surface later as confusing request failures.
func (c *Config) Validate() error {
	if c.GitHub.ClientID == "" {
		return errors.New("github client ID is required")
	}
	if c.GitHub.ClientSecret == "" {
		return errors.New("github client secret is required")
	}

	for name, raw := range map[string]string{
		"authorize URL": c.GitHub.AuthorizeURL,
		"token URL":     c.GitHub.TokenURL,
		"API base URL":  c.GitHub.APIBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("github %s must be an absolute URL, got %q", name, raw)
		}
	}

	if c.GitHub.CallbackPort != 0 &&
		(c.GitHub.CallbackPort < MinPortNumber || c.GitHub.CallbackPort > MaxPortNumber) {
		return fmt.Errorf("callback port out of range: %d", c.GitHub.CallbackPort)
	}

	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}
	if c.Cache.Capacity <= 0 {
		return errors.New("cache capacity must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("HTTP timeout must be positive")
	}

	return nil
}

// APIHost returns the host portion of the API base URL. Anonymous
// client-credential augmentation applies only to requests for this host.
func (c *GitHubConfig) APIHost() string {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
