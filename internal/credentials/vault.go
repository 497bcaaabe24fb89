// Package credentials resolves credentials ids to topic tokens.
//
// Tokens come from loaders (environment variables, a TOML file) and are held
// in a Vault that can be reloaded while lookups continue.
package credentials

import (
	"fmt"
	"strings"
	"sync"

	"notifer/internal/config"
)

// Loader retrieves id → token pairs from a source.
type Loader func() (map[string]string, error)

// Vault holds tokens in memory and supports atomic reloading.
type Vault struct {
	mu     sync.RWMutex
	values map[string]string
	loader Loader
}

// NewVault creates a Vault, calling the loader once to populate initial values.
func NewVault(loader Loader) (*Vault, error) {
	vals, err := loader()
	if err != nil {
		return nil, fmt.Errorf("initial credentials load: %w", err)
	}
	if vals == nil {
		vals = map[string]string{}
	}
	return &Vault{values: vals, loader: loader}, nil
}

// FromConfig builds a vault over the credentials file and the environment.
// Environment entries win over file entries with the same id.
func FromConfig(cfg config.Credentials) (*Vault, error) {
	return NewVault(Merge(FileLoader(cfg.File), EnvLoader(cfg.EnvPrefix)))
}

// Get returns the token stored under key, or an empty string.
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[key]
}

// Lookup resolves a credentials id. The id is tried verbatim first, then in
// its environment-key form (see EnvKey). Blank tokens count as missing.
func (v *Vault) Lookup(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if token := strings.TrimSpace(v.values[id]); token != "" {
		return token, true
	}
	if token := strings.TrimSpace(v.values[EnvKey(id)]); token != "" {
		return token, true
	}
	return "", false
}

// Len returns the number of stored entries.
func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.values)
}

// Reload calls the loader and swaps in the new values atomically.
// If the loader returns an error, existing values are preserved.
func (v *Vault) Reload() error {
	newVals, err := v.loader()
	if err != nil {
		return fmt.Errorf("reload credentials: %w", err)
	}
	if newVals == nil {
		newVals = map[string]string{}
	}
	v.mu.Lock()
	v.values = newVals
	v.mu.Unlock()
	return nil
}

// Merge combines loaders. Later loaders override earlier ones per key.
func Merge(loaders ...Loader) Loader {
	return func() (map[string]string, error) {
		out := map[string]string{}
		for _, load := range loaders {
			if load == nil {
				continue
			}
			vals, err := load()
			if err != nil {
				return nil, err
			}
			for k, val := range vals {
				out[k] = val
			}
		}
		return out, nil
	}
}

// Static returns a Loader over a fixed map. Useful for tests and embedding.
func Static(values map[string]string) Loader {
	return func() (map[string]string, error) {
		out := make(map[string]string, len(values))
		for k, v := range values {
			out[k] = v
		}
		return out, nil
	}
}
