package resolver

import "strings"

// Outcome is the terminal or current status of the triggering build.
type Outcome int

const (
	// OutcomeUnknown covers in-progress builds and missing results. It is the
	// zero value and behaves like OutcomeSuccess for gating and priority.
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeUnstable
	OutcomeAborted
)

// String returns the upper-case outcome name, or UNKNOWN for the zero value.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFailure:
		return "FAILURE"
	case OutcomeUnstable:
		return "UNSTABLE"
	case OutcomeAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Status is the label used in generated message and title text. Builds
// without a result yet read as RUNNING.
func (o Outcome) Status() string {
	if o == OutcomeUnknown {
		return "RUNNING"
	}
	return o.String()
}

// Tag returns the lower-case outcome tag, or "" when no result is known.
func (o Outcome) Tag() string {
	if o == OutcomeUnknown {
		return ""
	}
	return strings.ToLower(o.String())
}

// ParseOutcome maps a build result name onto an Outcome. Matching is
// case-insensitive; anything unrecognised (including RUNNING and the empty
// string) yields OutcomeUnknown.
func ParseOutcome(value string) Outcome {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SUCCESS":
		return OutcomeSuccess
	case "FAILURE":
		return OutcomeFailure
	case "UNSTABLE":
		return OutcomeUnstable
	case "ABORTED":
		return OutcomeAborted
	default:
		return OutcomeUnknown
	}
}

// Preferences selects which outcomes trigger a notification.
type Preferences struct {
	Success  bool `json:"success"`
	Failure  bool `json:"failure"`
	Unstable bool `json:"unstable"`
	Aborted  bool `json:"aborted"`
}

// DefaultPreferences notifies on everything except aborted builds.
func DefaultPreferences() Preferences {
	return Preferences{
		Success:  true,
		Failure:  true,
		Unstable: true,
		Aborted:  false,
	}
}

// ShouldNotify reports whether the outcome is enabled in prefs. Values outside
// the known set fail open.
func ShouldNotify(outcome Outcome, prefs Preferences) bool {
	switch outcome {
	case OutcomeSuccess, OutcomeUnknown:
		return prefs.Success
	case OutcomeFailure:
		return prefs.Failure
	case OutcomeUnstable:
		return prefs.Unstable
	case OutcomeAborted:
		return prefs.Aborted
	default:
		return true
	}
}
