// Package config loads, normalizes, and validates notifer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NOTIFER_TOPIC. The Defaults section is the process-wide global
// configuration every resolution reads; Store owns the single mutable copy
// and is the only way to change it at runtime.
//
// Always obtain settings through this package so downstream code receives
// trimmed values, clamped priorities, and clear validation errors.
package config
