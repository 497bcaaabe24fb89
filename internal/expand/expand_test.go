package expand_test

import (
	"os"
	"path/filepath"
	"testing"

	"notifer/internal/expand"
)

func TestString(t *testing.T) {
	vars := expand.FromMap(map[string]string{
		"JOB_NAME":     "api",
		"BUILD_NUMBER": "42",
		"EMPTY":        "",
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "no references", "no references"},
		{"bare", "job $JOB_NAME done", "job api done"},
		{"braced", "build #${BUILD_NUMBER}!", "build #42!"},
		{"adjacent", "$JOB_NAME-$BUILD_NUMBER", "api-42"},
		{"braced suffix", "${JOB_NAME}_x", "api_x"},
		{"unknown bare kept", "cost $UNKNOWN", "cost $UNKNOWN"},
		{"unknown braced kept", "x ${NOPE} y", "x ${NOPE} y"},
		{"empty value", "[$EMPTY]", "[]"},
		{"dollar amount", "costs $5", "costs $5"},
		{"trailing dollar", "end$", "end$"},
		{"unterminated brace", "a ${JOB_NAME", "a ${JOB_NAME"},
		{"invalid braced name", "${JOB NAME}", "${JOB NAME}"},
		{"empty braces", "${}", "${}"},
		{"double dollar", "$$JOB_NAME", "$api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expand.String(tt.in, vars); got != tt.want {
				t.Fatalf("String(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNilLookupIsIdentity(t *testing.T) {
	if got := expand.String("$A ${B}", nil); got != "$A ${B}" {
		t.Fatalf("got %q", got)
	}
}

func TestFromEnviron(t *testing.T) {
	lookup := expand.FromEnviron([]string{"A=1", "B=x=y", "malformed", "=skip"})
	if got := expand.String("$A $B $malformed", lookup); got != "1 x=y $malformed" {
		t.Fatalf("got %q", got)
	}
}

func TestChainPrefersEarlierLookup(t *testing.T) {
	lookup := expand.Chain(
		nil,
		expand.FromMap(map[string]string{"A": "first"}),
		expand.FromMap(map[string]string{"A": "second", "B": "fallback"}),
	)
	if got := expand.String("$A $B", lookup); got != "first fallback" {
		t.Fatalf("got %q", got)
	}
}

func TestEnvReadsProcessEnvironment(t *testing.T) {
	t.Setenv("NOTIFER_EXPAND_TEST", "live")
	fn := expand.Func(expand.Env())
	if got := fn("value=${NOTIFER_EXPAND_TEST}"); got != "value=live" {
		t.Fatalf("got %q", got)
	}
}

func TestFromDotenv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	if err := os.WriteFile(first, []byte("# build info\nRELEASE=v1\nCHANNEL=\"beta builds\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("RELEASE=v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lookup, err := expand.FromDotenv(first, second)
	if err != nil {
		t.Fatalf("FromDotenv: %v", err)
	}
	if got := expand.String("$RELEASE on ${CHANNEL}", lookup); got != "v2 on beta builds" {
		t.Fatalf("got %q", got)
	}

	if _, err := expand.FromDotenv(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
