// Package main hosts the notifer CLI entrypoint and command graph.
//
// The Cobra-based command tree turns a CI build step into a single
// notification: `send` resolves the request against the configured defaults
// and publishes it, `preview` shows what would be sent without touching the
// network, `test-connection` checks server, topic and token together, and
// `config` scaffolds, validates and edits the global defaults. Configuration
// loading, credentials and structured logging are wired once in the command
// context so subcommands only translate flags.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through flags.
package main
