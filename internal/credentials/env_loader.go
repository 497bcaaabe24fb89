package credentials

import (
	"os"
	"strings"
)

// EnvKey converts a credentials id into the key used for environment
// entries: upper-cased, with every non-alphanumeric byte replaced by '_'.
func EnvKey(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// EnvLoader returns a Loader that collects variables starting with prefix.
// Entries are keyed by the remainder of the variable name, so with prefix
// NOTIFER_TOKEN_ the variable NOTIFER_TOKEN_CI_BOT serves id "ci-bot".
// Empty values are omitted.
func EnvLoader(prefix string) Loader {
	return environLoader(prefix, os.Environ)
}

func environLoader(prefix string, environ func() []string) Loader {
	return func() (map[string]string, error) {
		vals := map[string]string{}
		if prefix == "" {
			return vals, nil
		}
		for _, kv := range environ() {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(key, prefix) {
				continue
			}
			name := strings.TrimPrefix(key, prefix)
			if name == "" || value == "" {
				continue
			}
			vals[name] = value
		}
		return vals, nil
	}
}
