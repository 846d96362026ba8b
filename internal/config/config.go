// Package config provides console configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.nimbus-console/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Server: listen address, rate limiting
//   - Platform: backend base URL, WebSocket URL, API token
//   - Logging: level and format
//
// Security: the platform token is never logged; the config directory uses 0750
// permissions. Validation uses sentinel errors for errors.Is() checks.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidListenAddr indicates the listen address is invalid.
	ErrInvalidListenAddr = errors.New("invalid listen address")

	// ErrInvalidBackendURL indicates the platform base URL is invalid.
	ErrInvalidBackendURL = errors.New("invalid backend URL")

	// ErrInvalidWSURL indicates the platform WebSocket URL is invalid.
	ErrInvalidWSURL = errors.New("invalid WebSocket URL")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidRateLimit indicates the rate limit settings are out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidTheme indicates the default theme is not recognized.
	ErrInvalidTheme = errors.New("invalid theme")
)

const (
	// DefaultListenAddr is the default address the console binds to.
	DefaultListenAddr = "127.0.0.1:8787"

	// DefaultBackendURL is the default platform API base URL.
	DefaultBackendURL = "http://localhost:8080"

	// DefaultRequestTimeout bounds non-streaming platform requests.
	DefaultRequestTimeout = 30 * time.Second

	// MaxRequestTimeout is the absolute ceiling for the request timeout.
	MaxRequestTimeout = 5 * time.Minute
)

// Config stores console configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (tokens, secrets), update MarshalJSON.
type Config struct {
	// Server configuration
	ListenAddr     string `mapstructure:"listen_addr" json:"listen_addr"`
	RateLimitRPS   int    `mapstructure:"rate_limit_rps" json:"rate_limit_rps"`     // requests per second per client
	RateLimitBurst int    `mapstructure:"rate_limit_burst" json:"rate_limit_burst"` // burst capacity

	// Platform configuration
	BackendURL string        `mapstructure:"backend_url" json:"backend_url"`
	WSURL      string        `mapstructure:"ws_url" json:"ws_url"` // derived from backend_url when empty
	Token      string        `mapstructure:"token" json:"token"`   // SENSITIVE: masked in MarshalJSON
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`

	// Logging configuration
	LogLevel  string `mapstructure:"log_level" json:"log_level"`   // debug, info, warn, error
	LogFormat string `mapstructure:"log_format" json:"log_format"` // text, json

	// Presentation defaults
	DefaultTheme string  `mapstructure:"default_theme" json:"default_theme"`
	DefaultZoom  float64 `mapstructure:"default_zoom" json:"default_zoom"`

	// StateDir overrides the persisted preference directory (tests only, normally empty).
	StateDir string `mapstructure:"state_dir" json:"state_dir"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".nimbus-console")

	// Ensure directory exists (0750 keeps the token file private to the user)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	// Read configuration file (if exists)
	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)

	// Platform defaults
	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("timeout", DefaultRequestTimeout)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Presentation defaults
	v.SetDefault("default_theme", "dark")
	v.SetDefault("default_zoom", 1.0)
}

// bindEnvVariables binds environment variables explicitly.
// The token is environment-first so it never has to live in config.yaml.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("token", "NIMBUS_TOKEN")
	mustBind("backend_url", "NIMBUS_BACKEND_URL")
	mustBind("ws_url", "NIMBUS_WS_URL")
	mustBind("listen_addr", "NIMBUS_LISTEN_ADDR")
	mustBind("log_level", "NIMBUS_LOG_LEVEL")
	mustBind("log_format", "NIMBUS_LOG_FORMAT")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) avoid accidental substring matches against
// real secret material in log scrubbers.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Shows first 2 and last 2 characters for secrets long enough that the
// remainder stays unguessable; fully masks anything shorter.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - Token
//
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.Token = maskSecret(a.Token)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
