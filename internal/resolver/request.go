package resolver

import (
	"regexp"
	"strings"
)

const (
	// MaxPriority is the highest priority the remote service accepts.
	MaxPriority = 5
	// MinPriority is the lowest priority sent on the wire.
	MinPriority = 1
	// AutoPriority asks Resolve to derive priority from the outcome.
	AutoPriority = 0
	// MaxTags caps the number of tags on a payload, fixed tags included.
	MaxTags = 5
)

var tagSeparator = regexp.MustCompile(`[,\s]+`)

// RawRequest is the user-supplied input for one notification attempt. Empty
// strings mean "fall back to the global default" or "generate one".
type RawRequest struct {
	Topic         string
	Message       string
	Title         string
	Tags          []string
	CredentialsID string
	ServerURL     string
	FailOnError   bool

	priority int
}

// SetPriority stores p clamped into [0,5]. Zero requests auto-detection.
func (r *RawRequest) SetPriority(p int) {
	r.priority = ClampInt(p, AutoPriority, MaxPriority)
}

// Priority returns the stored priority, 0 meaning auto-detect.
func (r RawRequest) Priority() int {
	return r.priority
}

// NormalizeTags accepts either one delimited string or a list of strings and
// returns a flat ordered sequence. Every value is split on runs of commas and
// whitespace; empty pieces are dropped, duplicates kept.
func NormalizeTags(values ...string) []string {
	var tags []string
	for _, value := range values {
		tags = append(tags, splitTags(value)...)
	}
	return tags
}

func splitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := tagSeparator.Split(value, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
