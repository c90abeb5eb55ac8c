package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file and overlaid with environment variables.
//
// A Config is built once at process start and treated as read-only afterwards.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Frontend    FrontendConfig    `toml:"frontend"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and endpoints.
//
// The endpoint URLs default to Spotify's production hosts and only need overriding in tests or staging.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" env:"SPOTIFY_CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"SPOTIFY_CLIENT_SECRET"`
	RedirectURI  string `toml:"redirect_uri" env:"SPOTIFY_REDIRECT_URI"`
	AuthURL      string `toml:"auth_url" env:"SPOTIFY_AUTH_URL"`
	TokenURL     string `toml:"token_url" env:"SPOTIFY_TOKEN_URL"`
	APIBaseURL   string `toml:"api_base_url" env:"SPOTIFY_API_BASE_URL"`
}

// FrontendConfig describes the client application the callback redirects to.
type FrontendConfig struct {
	URL string `toml:"url" env:"FRONTEND_URL"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"DATABASE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `toml:"host" env:"SERVER_HOST"`
	Port              int           `toml:"port" env:"SERVER_PORT"`
	ProviderTimeout   time.Duration `toml:"provider_timeout" env:"SERVER_PROVIDER_TIMEOUT"`       // zero means no timeout
	ProviderRateLimit float64       `toml:"provider_rate_limit" env:"SERVER_PROVIDER_RATE_LIMIT"` // outbound requests per second, zero means unlimited
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
}

// Addr returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overlays values from the process environment onto config.
func ApplyEnv(config *Config) error {
	return ApplyEnvFrom(config, nil)
}

// ApplyEnvFrom overlays values from environ onto config. A nil map reads the process environment.
//
// Variables that are unset leave the corresponding field untouched.
func ApplyEnvFrom(config *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(config, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load resolves the process configuration: the file at path when it exists, otherwise the embedded defaults,
// then environment overrides.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports whether the configuration carries everything the OAuth flow needs.
func (c *Config) Validate() error {
	sp := c.Credentials.Spotify
	if sp.ClientID == "" || sp.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	if sp.RedirectURI == "" {
		return fmt.Errorf("%w: spotify redirect_uri must be set", ErrInvalidConfig)
	}
	if sp.AuthURL == "" || sp.TokenURL == "" || sp.APIBaseURL == "" {
		return fmt.Errorf("%w: spotify endpoints must be set", ErrInvalidConfig)
	}
	if c.Frontend.URL == "" {
		return fmt.Errorf("%w: frontend url must be set", ErrInvalidConfig)
	}
	if _, err := url.Parse(c.Frontend.URL); err != nil {
		return fmt.Errorf("%w: frontend url: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
