package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Listen address: "host:port" with a non-empty port
	if err := validateListenAddr(c.ListenAddr); err != nil {
		return err
	}

	// 2. Platform URLs
	if err := validateHTTPURL(c.BackendURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackendURL, err)
	}
	if c.WSURL != "" {
		u, err := url.Parse(c.WSURL)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWSURL, err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("%w: scheme must be ws or wss, got %q", ErrInvalidWSURL, u.Scheme)
		}
	}

	// 3. Timeout range
	if c.Timeout <= 0 || c.Timeout > MaxRequestTimeout {
		return fmt.Errorf("%w: must be between 1s and %s, got %s", ErrInvalidTimeout, MaxRequestTimeout, c.Timeout)
	}

	// 4. Rate limiting: burst must cover at least one full second of traffic
	if c.RateLimitRPS < 1 || c.RateLimitRPS > 10000 {
		return fmt.Errorf("%w: rate_limit_rps must be between 1 and 10000, got %d", ErrInvalidRateLimit, c.RateLimitRPS)
	}
	if c.RateLimitBurst < c.RateLimitRPS {
		return fmt.Errorf("%w: rate_limit_burst (%d) must be >= rate_limit_rps (%d)",
			ErrInvalidRateLimit, c.RateLimitBurst, c.RateLimitRPS)
	}

	// 5. Logging
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.LogLevel) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v", ErrInvalidLogLevel, c.LogLevel, validLevels)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format %q is not valid, must be text or json", ErrInvalidLogLevel, c.LogFormat)
	}

	// 6. Presentation defaults; zoom bounds match theme.MinZoom/MaxZoom
	validThemes := []string{"dark", "light", "high-contrast"}
	if !slices.Contains(validThemes, c.DefaultTheme) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v", ErrInvalidTheme, c.DefaultTheme, validThemes)
	}
	if c.DefaultZoom < 0.5 || c.DefaultZoom > 2.0 {
		return fmt.Errorf("%w: default_zoom must be between 0.5 and 2.0, got %.2f", ErrInvalidTheme, c.DefaultZoom)
	}

	return nil
}

// validateListenAddr checks a "host:port" bind address. The host part may be
// empty (bind all interfaces) but the port must be present.
func validateListenAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: listen_addr cannot be empty", ErrInvalidListenAddr)
	}
	i := strings.LastIndexByte(addr, ':')
	if i < 0 || i == len(addr)-1 {
		return fmt.Errorf("%w: %q must be in host:port form", ErrInvalidListenAddr, addr)
	}
	return nil
}

// validateHTTPURL checks that a URL parses and uses an http(s) scheme with a host.
func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
