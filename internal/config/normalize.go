package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDefaults()
	if err := c.normalizeCredentials(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeDefaults() {
	c.Defaults.ServerURL = strings.TrimSpace(c.Defaults.ServerURL)
	if c.Defaults.ServerURL == "" {
		if value, ok := os.LookupEnv(envServerURL); ok {
			c.Defaults.ServerURL = strings.TrimSpace(value)
		}
	}
	if c.Defaults.ServerURL == "" {
		c.Defaults.ServerURL = defaultServerURL
	}

	c.Defaults.Topic = strings.TrimSpace(c.Defaults.Topic)
	if c.Defaults.Topic == "" {
		if value, ok := os.LookupEnv(envDefaultTopic); ok {
			c.Defaults.Topic = strings.TrimSpace(value)
		}
	}

	c.Defaults.CredentialsID = strings.TrimSpace(c.Defaults.CredentialsID)
	if c.Defaults.CredentialsID == "" {
		if value, ok := os.LookupEnv(envDefaultCredentialsID); ok {
			c.Defaults.CredentialsID = strings.TrimSpace(value)
		}
	}

	c.Defaults.Priority = ClampPriority(c.Defaults.Priority)
}

func (c *Config) normalizeCredentials() error {
	var err error
	if strings.TrimSpace(c.Credentials.File) == "" {
		c.Credentials.File = defaultCredentialsFile
	}
	if c.Credentials.File, err = expandPath(strings.TrimSpace(c.Credentials.File)); err != nil {
		return fmt.Errorf("credentials.file: %w", err)
	}
	c.Credentials.EnvPrefix = strings.TrimSpace(c.Credentials.EnvPrefix)
	if c.Credentials.EnvPrefix == "" {
		c.Credentials.EnvPrefix = defaultCredentialsEnv
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}

// ClampPriority bounds a global default priority to [1,5].
func ClampPriority(p int) int {
	if p < minDefaultPriority {
		return minDefaultPriority
	}
	if p > maxDefaultPriority {
		return maxDefaultPriority
	}
	return p
}
