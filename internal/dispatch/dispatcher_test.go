package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"notifer/internal/config"
	"notifer/internal/credentials"
	"notifer/internal/dispatch"
	"notifer/internal/logging"
	"notifer/internal/notifer"
	"notifer/internal/resolver"
)

type staticDefaults config.Defaults

func (s staticDefaults) Defaults() config.Defaults { return config.Defaults(s) }

type mapTokens map[string]string

func (m mapTokens) Lookup(id string) (string, bool) {
	v, ok := m[id]
	return v, ok
}

type fakeSender struct {
	mu    sync.Mutex
	calls []sendCall
	resp  *notifer.Response
	err   error
}

type sendCall struct {
	conn    notifer.Connection
	payload resolver.Payload
}

func (f *fakeSender) Send(_ context.Context, conn notifer.Connection, payload resolver.Payload) (*notifer.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sendCall{conn: conn, payload: payload})
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func defaults() staticDefaults {
	return staticDefaults{
		ServerURL:     "https://notify.example",
		CredentialsID: "ci-bot",
		Topic:         "builds",
		Priority:      3,
	}
}

func baseJob(outcome resolver.Outcome) dispatch.Job {
	return dispatch.Job{
		Outcome:     outcome,
		Preferences: resolver.DefaultPreferences(),
		Build:       resolver.BuildInfo{JobName: "api", Number: "7", URL: "https://ci/api/7"},
	}
}

func TestNotifySendsResolvedPayload(t *testing.T) {
	sender := &fakeSender{resp: &notifer.Response{ID: "n-1"}}
	d := dispatch.New(defaults(), mapTokens{"ci-bot": "tok"}, sender, nil)

	report, err := d.Notify(context.Background(), baseJob(resolver.OutcomeFailure))
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if !report.Sent() || report.Response.ID != "n-1" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if _, err := uuid.Parse(report.CorrelationID); err != nil {
		t.Fatalf("correlation id %q is not a uuid: %v", report.CorrelationID, err)
	}
	if sender.count() != 1 {
		t.Fatalf("expected one send, got %d", sender.count())
	}
	call := sender.calls[0]
	if call.conn.BaseURL != "https://notify.example" || call.conn.Token != "tok" {
		t.Fatalf("unexpected connection: %+v", call.conn)
	}
	if call.payload.Topic != "builds" || call.payload.Priority != 5 {
		t.Fatalf("unexpected payload: %+v", call.payload)
	}
	if strings.Join(call.payload.Tags, ",") != "failure,jenkins" {
		t.Fatalf("tags = %v", call.payload.Tags)
	}
	if report.Resolved.Payload.Topic != "builds" {
		t.Fatalf("report should carry the resolved payload: %+v", report.Resolved)
	}
}

func TestNotifySkipsByPreferences(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	sender := &fakeSender{}
	d := dispatch.New(defaults(), mapTokens{}, sender, logger)

	report, err := d.Notify(context.Background(), baseJob(resolver.OutcomeAborted))
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if !report.Skipped || report.Sent() {
		t.Fatalf("expected skipped report, got %+v", report)
	}
	if sender.count() != 0 {
		t.Fatalf("skipped attempt must not send")
	}
	if !strings.Contains(buf.String(), "notification skipped by preferences") {
		t.Fatalf("expected skip log, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"correlation_id":"`+report.CorrelationID+`"`) {
		t.Fatalf("skip log should carry correlation id: %q", buf.String())
	}
}

func TestNotifyResolutionErrors(t *testing.T) {
	sender := &fakeSender{}

	noTopic := defaults()
	noTopic.Topic = ""
	d := dispatch.New(noTopic, mapTokens{"ci-bot": "tok"}, sender, nil)
	if _, err := d.Notify(context.Background(), baseJob(resolver.OutcomeSuccess)); !errors.Is(err, resolver.ErrMissingTopic) {
		t.Fatalf("expected ErrMissingTopic, got %v", err)
	}

	noCreds := defaults()
	noCreds.CredentialsID = ""
	d = dispatch.New(noCreds, mapTokens{"ci-bot": "tok"}, sender, nil)
	if _, err := d.Notify(context.Background(), baseJob(resolver.OutcomeSuccess)); !errors.Is(err, resolver.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}

	d = dispatch.New(defaults(), mapTokens{"ci-bot": "  "}, sender, nil)
	_, err := d.Notify(context.Background(), baseJob(resolver.OutcomeSuccess))
	if !errors.Is(err, resolver.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if !strings.Contains(err.Error(), "ci-bot") {
		t.Fatalf("token error should name the credentials id: %v", err)
	}

	if sender.count() != 0 {
		t.Fatalf("no send expected on resolution errors, got %d", sender.count())
	}
}

func TestNotifyFailureSwallowedWithoutFailOnError(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	sendErr := &notifer.SendError{StatusCode: 500, Body: "boom"}
	sender := &fakeSender{err: sendErr}
	d := dispatch.New(defaults(), mapTokens{"ci-bot": "tok"}, sender, logger)

	report, err := d.Notify(context.Background(), baseJob(resolver.OutcomeSuccess))
	if err != nil {
		t.Fatalf("expected nil error without failOnError, got %v", err)
	}
	if !errors.Is(report.Failure, sendErr) {
		t.Fatalf("report should carry the failure, got %v", report.Failure)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("expected warn log, got %q", buf.String())
	}
}

func TestNotifyFailureRaisedWithFailOnError(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: refused")}
	d := dispatch.New(defaults(), mapTokens{"ci-bot": "tok"}, sender, nil)

	job := baseJob(resolver.OutcomeFailure)
	job.Request.FailOnError = true
	report, err := d.Notify(context.Background(), job)
	if err == nil || !strings.Contains(err.Error(), "dial tcp: refused") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
	if report.Failure != nil {
		t.Fatalf("raised failures are not duplicated in the report")
	}
}

func TestNotifyExpandsFreeText(t *testing.T) {
	sender := &fakeSender{resp: &notifer.Response{ID: "x"}}
	d := dispatch.New(defaults(), mapTokens{"ci-bot": "tok"}, sender, nil)

	job := baseJob(resolver.OutcomeSuccess)
	job.Request.Message = "deployed $VERSION"
	job.Expand = func(s string) string { return strings.ReplaceAll(s, "$VERSION", "1.2.3") }

	if _, err := d.Notify(context.Background(), job); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if got := sender.calls[0].payload.Message; got != "deployed 1.2.3" {
		t.Fatalf("message = %q", got)
	}
}

func TestPreviewDoesNotSend(t *testing.T) {
	sender := &fakeSender{}
	d := dispatch.New(defaults(), nil, sender, nil)

	resolved, err := d.Preview(baseJob(resolver.OutcomeUnstable))
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if resolved.Payload.Priority != 3 || resolved.Payload.Title != "[UNSTABLE] api #7" {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
	if sender.count() != 0 {
		t.Fatalf("preview must not send")
	}
}

func TestTestConnection(t *testing.T) {
	sender := &fakeSender{resp: &notifer.Response{ID: "t-1"}}
	d := dispatch.New(defaults(), mapTokens{"ci-bot": "tok", "other": "tok-2"}, sender, nil)

	resp, err := d.TestConnection(context.Background(), "", "other", "probe")
	if err != nil {
		t.Fatalf("TestConnection returned error: %v", err)
	}
	if resp.ID != "t-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	call := sender.calls[0]
	if call.conn.BaseURL != "https://notify.example" || call.conn.Token != "tok-2" {
		t.Fatalf("unexpected connection %+v", call.conn)
	}
	want := resolver.Payload{
		Topic:    "probe",
		Message:  "Test notification from Notifer CLI",
		Title:    "Connection Test",
		Priority: 2,
		Tags:     []string{"jenkins-test"},
	}
	if call.payload.Topic != want.Topic || call.payload.Message != want.Message ||
		call.payload.Title != want.Title || call.payload.Priority != want.Priority ||
		len(call.payload.Tags) != 1 || call.payload.Tags[0] != want.Tags[0] {
		t.Fatalf("payload = %+v, want %+v", call.payload, want)
	}
}

func TestTestConnectionValidation(t *testing.T) {
	sender := &fakeSender{err: errors.New("unexpected send")}

	tests := []struct {
		name     string
		defaults staticDefaults
		server   string
		creds    string
		topic    string
		tokens   mapTokens
		wantErr  error
		wantText string
	}{
		{name: "bad url", defaults: defaults(), server: "ftp://x", tokens: mapTokens{"ci-bot": "t"}, wantText: "http:// or https://"},
		{name: "missing topic", defaults: staticDefaults{ServerURL: "https://x", CredentialsID: "ci-bot"}, tokens: mapTokens{"ci-bot": "t"}, wantErr: resolver.ErrMissingTopic},
		{name: "missing credentials", defaults: staticDefaults{ServerURL: "https://x", Topic: "t"}, tokens: mapTokens{}, wantErr: resolver.ErrMissingCredentials},
		{name: "missing token", defaults: defaults(), tokens: mapTokens{}, wantErr: resolver.ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dispatch.New(tt.defaults, tt.tokens, sender, nil)
			_, err := d.TestConnection(context.Background(), tt.server, tt.creds, tt.topic)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantText != "" && !strings.Contains(err.Error(), tt.wantText) {
				t.Fatalf("expected %q in %v", tt.wantText, err)
			}
		})
	}
	if sender.count() != 0 {
		t.Fatalf("validation failures must not send")
	}
}

func TestNotifyEndToEnd(t *testing.T) {
	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Topic-Token")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"e2e","topic":"builds","priority":5}`))
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Defaults.ServerURL = srv.URL + "/"
	cfg.Defaults.CredentialsID = "ci-bot"
	cfg.Defaults.Topic = "builds"
	store := config.NewStore(&cfg, "")

	vault, err := credentials.NewVault(credentials.Static(map[string]string{"CI_BOT": "secret"}))
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	d := dispatch.New(store, vault, notifer.New(), nil)
	report, err := d.Notify(context.Background(), baseJob(resolver.OutcomeFailure))
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if report.Response == nil || report.Response.ID != "e2e" {
		t.Fatalf("unexpected report %+v", report)
	}
	if gotToken != "secret" || gotPath != "/builds" {
		t.Fatalf("server saw token=%q path=%q", gotToken, gotPath)
	}
}
