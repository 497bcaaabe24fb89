package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"notifer/internal/config"
	"notifer/internal/testsupport"
)

type receivedRequest struct {
	path  string
	token string
	body  map[string]any
}

type fakeNotifer struct {
	mu       sync.Mutex
	status   int
	requests []receivedRequest
}

func (f *fakeNotifer) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(data, &body)

	f.mu.Lock()
	f.requests = append(f.requests, receivedRequest{
		path:  r.URL.Path,
		token: r.Header.Get("X-Topic-Token"),
		body:  body,
	})
	status := f.status
	count := len(f.requests)
	f.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "rejected")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":"n-%d","topic":%q,"priority":%v}`, count, strings.TrimPrefix(r.URL.Path, "/"), body["priority"])
}

func (f *fakeNotifer) received() []receivedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]receivedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

type cliTestEnv struct {
	server     *httptest.Server
	notifer    *fakeNotifer
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{
		"JOB_NAME", "BUILD_NUMBER", "BUILD_URL", "BUILD_RESULT",
		"NOTIFER_SERVER_URL", "NOTIFER_TOPIC", "NOTIFER_CREDENTIALS_ID",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CLI_TEST_TOKEN_CI_BOT", "secret-token")

	fake := &fakeNotifer{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithServerURL(srv.URL),
		testsupport.WithTokenEnvPrefix("CLI_TEST_TOKEN_"),
	)
	testsupport.WriteCredentials(t, cfg.Credentials.File, map[string]string{"file-bot": "file-token"})

	env := &cliTestEnv{
		server:     srv,
		notifer:    fake,
		cfg:        cfg,
		configPath: filepath.Join(testsupport.BaseDir(cfg), "notifer.toml"),
	}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	testsupport.WriteConfig(t, e.configPath, e.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
