package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"notifer/internal/fileutil"
)

// Store owns the process-wide configuration. Readers get value snapshots;
// all changes go through Update so validation and persistence cannot be
// skipped.
type Store struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// NewStore wraps cfg. An empty path keeps updates in memory only.
func NewStore(cfg *Config, path string) *Store {
	s := &Store{path: path}
	if cfg != nil {
		s.cfg = *cfg
	} else {
		s.cfg = Default()
	}
	return s
}

// Defaults returns a snapshot of the global defaults.
func (s *Store) Defaults() Defaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Defaults
}

// Config returns a snapshot of the whole configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Path returns the file updates are persisted to.
func (s *Store) Path() string {
	return s.path
}

// Update applies fn to a copy of the defaults, validates the result, swaps it
// in and persists the file. Nothing changes when fn, validation or saving
// fails.
func (s *Store) Update(fn func(*Defaults) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg
	if err := fn(&next.Defaults); err != nil {
		return err
	}
	next.Defaults.ServerURL = strings.TrimSpace(next.Defaults.ServerURL)
	next.Defaults.Topic = strings.TrimSpace(next.Defaults.Topic)
	next.Defaults.CredentialsID = strings.TrimSpace(next.Defaults.CredentialsID)
	next.Defaults.Priority = ClampPriority(next.Defaults.Priority)
	if err := next.Defaults.Validate(); err != nil {
		return err
	}
	if err := save(s.path, &next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

// SetServerURL replaces the global server URL.
func (s *Store) SetServerURL(value string) error {
	return s.Update(func(d *Defaults) error {
		d.ServerURL = value
		return nil
	})
}

// SetCredentialsID replaces the global credentials id.
func (s *Store) SetCredentialsID(value string) error {
	return s.Update(func(d *Defaults) error {
		d.CredentialsID = value
		return nil
	})
}

// SetTopic replaces the global topic.
func (s *Store) SetTopic(value string) error {
	return s.Update(func(d *Defaults) error {
		d.Topic = value
		return nil
	})
}

// SetPriority replaces the global priority, clamped to [1,5].
func (s *Store) SetPriority(value int) error {
	return s.Update(func(d *Defaults) error {
		d.Priority = value
		return nil
	})
}

// SettableKeys lists the keys accepted by Set.
func SettableKeys() []string {
	return []string{"server_url", "credentials_id", "topic", "priority"}
}

// Set updates one default by its TOML key name.
func (s *Store) Set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "server_url":
		return s.SetServerURL(value)
	case "credentials_id":
		return s.SetCredentialsID(value)
	case "topic":
		return s.SetTopic(value)
	case "priority":
		p, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("priority must be an integer: %w", err)
		}
		return s.SetPriority(p)
	default:
		return fmt.Errorf("unknown key %q (expected one of %s)", key, strings.Join(SettableKeys(), ", "))
	}
}

// save writes cfg to path while holding an advisory lock on path+".lock", so
// two administrative processes never interleave writes.
func save(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
