package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"notifer/internal/config"
)

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	writeFile(t, path, data)
}

// WriteCredentials writes a credentials file with the given id → token pairs.
func WriteCredentials(t testing.TB, path string, tokens map[string]string) {
	t.Helper()

	data, err := toml.Marshal(struct {
		Tokens map[string]string `toml:"tokens"`
	}{Tokens: tokens})
	if err != nil {
		t.Fatalf("encode credentials: %v", err)
	}
	writeFile(t, path, data)
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
