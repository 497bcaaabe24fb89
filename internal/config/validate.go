package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Defaults.Validate(); err != nil {
		return err
	}
	return c.validateLogging()
}

// Validate checks the global defaults the way administrative updates do.
func (d Defaults) Validate() error {
	if err := ValidateServerURL(d.ServerURL); err != nil {
		return fmt.Errorf("defaults.server_url: %w", err)
	}
	if d.Priority < minDefaultPriority || d.Priority > maxDefaultPriority {
		return fmt.Errorf("defaults.priority must be between %d and %d", minDefaultPriority, maxDefaultPriority)
	}
	return nil
}

// ValidateServerURL requires a non-empty http:// or https:// URL.
func ValidateServerURL(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("server URL is required")
	}
	if !strings.HasPrefix(value, serverURLSchemeHTTP) && !strings.HasPrefix(value, serverURLSchemeHTTPS) {
		return errors.New("server URL must start with http:// or https://")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
