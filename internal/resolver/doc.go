// Package resolver turns a sparse notification request into a fully resolved
// payload.
//
// It owns the precedence rules (request value over global default over
// computed default), the build-outcome gating table, and the derivation of
// default message text, title, priority and tags. Everything here is pure
// computation: no network, no secret lookup, no environment access. Variable
// expansion is injected by the caller as a plain func(string) string so the
// package stays testable with fakes.
//
// Callers normally go through internal/dispatch, which adds token lookup,
// sending and logging around Resolve.
package resolver
