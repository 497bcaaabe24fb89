// Package expand substitutes $VAR and ${VAR} references in free text.
//
// Unknown references are left exactly as written so a message that mentions
// a literal dollar amount, or a variable the host never defined, survives
// untouched.
package expand

import (
	"os"
	"strings"
)

// Lookup resolves one variable name.
type Lookup func(name string) (string, bool)

// FromMap returns a Lookup backed by vars.
func FromMap(vars map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// FromEnviron parses KEY=VALUE pairs such as those returned by os.Environ.
func FromEnviron(environ []string) Lookup {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = value
	}
	return FromMap(vars)
}

// Env returns a Lookup reading the live process environment.
func Env() Lookup {
	return os.LookupEnv
}

// Chain tries each lookup in order and returns the first hit.
func Chain(lookups ...Lookup) Lookup {
	return func(name string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if v, ok := lookup(name); ok {
				return v, true
			}
		}
		return "", false
	}
}

// Func adapts lookup into a func(string) string suitable for the resolver.
func Func(lookup Lookup) func(string) string {
	return func(s string) string { return String(s, lookup) }
}

// String expands every reference in s that lookup knows about.
func String(s string, lookup Lookup) string {
	if lookup == nil || !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '$' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}

		if s[i+1] == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				break
			}
			name := s[i+2 : i+2+end]
			ref := s[i : i+3+end]
			if v, ok := lookupName(name, lookup); ok {
				b.WriteString(v)
			} else {
				b.WriteString(ref)
			}
			i += len(ref)
			continue
		}

		n := nameLen(s[i+1:])
		if n == 0 {
			b.WriteByte('$')
			i++
			continue
		}
		name := s[i+1 : i+1+n]
		if v, ok := lookup(name); ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[i : i+1+n])
		}
		i += 1 + n
	}
	return b.String()
}

func lookupName(name string, lookup Lookup) (string, bool) {
	if name == "" || nameLen(name) != len(name) {
		return "", false
	}
	return lookup(name)
}

// nameLen reports how many leading bytes of s form a variable name.
func nameLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return i
		}
	}
	return len(s)
}
