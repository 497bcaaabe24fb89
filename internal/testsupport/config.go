// Package testsupport builds isolated configuration for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"notifer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. The
// credentials file lives under that directory and logging is kept quiet.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Defaults.CredentialsID = "ci-bot"
	cfgVal.Defaults.Topic = "builds"
	cfgVal.Credentials.File = filepath.Join(base, "credentials.toml")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServerURL points the defaults at a test server.
func WithServerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Defaults.ServerURL = url
	}
}

// WithTokenEnvPrefix sets the environment prefix credentials are read from.
func WithTokenEnvPrefix(prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Credentials.EnvPrefix = prefix
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Credentials.File)
}
