package resolver

import (
	"errors"
	"fmt"
	"strings"

	"notifer/internal/config"
)

var (
	// ErrMissingTopic is returned when neither the request nor the global
	// defaults name a topic.
	ErrMissingTopic = errors.New("topic is required; set it on the request or in the global defaults")
	// ErrMissingCredentials is returned when no credentials id can be resolved.
	ErrMissingCredentials = errors.New("credentials are required; set credentials_id on the request or in the global defaults")
	// ErrMissingToken is raised by callers when the credentials id resolved
	// but the secret lookup produced nothing.
	ErrMissingToken = errors.New("could not retrieve token from credentials")
)

// fixedTag is always added after the outcome tag.
const fixedTag = "jenkins"

// ExpandFunc substitutes variable references in free text. A nil ExpandFunc
// is treated as the identity function.
type ExpandFunc func(string) string

// BuildInfo carries the build metadata used in generated text.
type BuildInfo struct {
	JobName string `json:"job_name"`
	Number  string `json:"number"`
	URL     string `json:"url"`
}

// Payload is a fully resolved notification ready to send.
type Payload struct {
	Topic    string   `json:"topic"`
	Message  string   `json:"message"`
	Title    string   `json:"title,omitempty"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
}

// Resolved bundles the payload with the connection-level values that were
// resolved alongside it.
type Resolved struct {
	ServerURL     string  `json:"server_url"`
	CredentialsID string  `json:"credentials_id"`
	Payload       Payload `json:"payload"`
}

// Resolve merges raw over globals and fills in computed defaults. It performs
// no I/O and fails fast with ErrMissingTopic or ErrMissingCredentials.
func Resolve(raw RawRequest, outcome Outcome, globals config.Defaults, info BuildInfo, expand ExpandFunc) (Resolved, error) {
	if expand == nil {
		expand = identity
	}

	var out Resolved
	out.ServerURL = firstNonEmpty(raw.ServerURL, globals.ServerURL)

	topic := firstNonEmpty(raw.Topic, globals.Topic)
	if topic == "" {
		return Resolved{}, ErrMissingTopic
	}
	topic = expand(topic)
	if strings.TrimSpace(topic) == "" {
		return Resolved{}, fmt.Errorf("%w (expanded to an empty value)", ErrMissingTopic)
	}
	out.Payload.Topic = topic

	out.CredentialsID = firstNonEmpty(raw.CredentialsID, globals.CredentialsID)
	if out.CredentialsID == "" {
		return Resolved{}, ErrMissingCredentials
	}

	if raw.Message != "" {
		out.Payload.Message = expand(raw.Message)
	} else {
		out.Payload.Message = DefaultMessage(info, outcome)
	}

	if raw.Title != "" {
		out.Payload.Title = expand(raw.Title)
	} else {
		out.Payload.Title = DefaultTitle(info, outcome)
	}

	priority := raw.Priority()
	if priority <= AutoPriority {
		priority = PriorityForOutcome(outcome)
	}
	out.Payload.Priority = ClampInt(priority, MinPriority, MaxPriority)

	out.Payload.Tags = buildTags(outcome, raw.Tags, expand)
	return out, nil
}

// DefaultMessage is the body used when the request leaves message empty.
func DefaultMessage(info BuildInfo, outcome Outcome) string {
	return fmt.Sprintf("Build #%s %s\nJob: %s\nDetails: %s", info.Number, outcome.Status(), info.JobName, info.URL)
}

// DefaultTitle is the title used when the request leaves title empty.
func DefaultTitle(info BuildInfo, outcome Outcome) string {
	return fmt.Sprintf("[%s] %s #%s", outcome.Status(), info.JobName, info.Number)
}

// PriorityForOutcome maps an outcome onto the auto-detected priority.
func PriorityForOutcome(outcome Outcome) int {
	switch outcome {
	case OutcomeSuccess, OutcomeUnknown:
		return 2
	case OutcomeUnstable:
		return 3
	case OutcomeFailure:
		return 5
	default:
		return 3
	}
}

// buildTags enforces MaxTags while appending so the fixed tags always survive
// and custom tags are kept in order until the cap is hit.
func buildTags(outcome Outcome, raw []string, expand ExpandFunc) []string {
	tags := make([]string, 0, MaxTags)
	if tag := outcome.Tag(); tag != "" {
		tags = append(tags, tag)
	}
	tags = append(tags, fixedTag)

	for _, value := range raw {
		for _, piece := range splitTags(expand(value)) {
			if len(tags) >= MaxTags {
				return tags
			}
			tags = append(tags, piece)
		}
	}
	return tags
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func identity(s string) string { return s }
