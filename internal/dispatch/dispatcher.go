package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"notifer/internal/config"
	"notifer/internal/logging"
	"notifer/internal/notifer"
	"notifer/internal/resolver"
)

const (
	testMessage  = "Test notification from Notifer CLI"
	testTitle    = "Connection Test"
	testPriority = 2
	testTag      = "jenkins-test"
)

// DefaultsSource supplies the global defaults snapshot for one resolution.
type DefaultsSource interface {
	Defaults() config.Defaults
}

// TokenSource resolves a credentials id to a topic token.
type TokenSource interface {
	Lookup(id string) (string, bool)
}

// Sender performs the HTTP exchange.
type Sender interface {
	Send(ctx context.Context, conn notifer.Connection, payload resolver.Payload) (*notifer.Response, error)
}

// Job is one notification attempt.
type Job struct {
	Request     resolver.RawRequest
	Outcome     resolver.Outcome
	Preferences resolver.Preferences
	Build       resolver.BuildInfo
	Expand      resolver.ExpandFunc
}

// Report describes what an attempt did. Failure holds a send error that was
// logged but not raised because the request did not set FailOnError.
type Report struct {
	CorrelationID string
	Skipped       bool
	Resolved      resolver.Resolved
	Response      *notifer.Response
	Failure       error
}

// Sent reports whether the server accepted the notification.
func (r Report) Sent() bool {
	return r.Response != nil
}

// Dispatcher wires resolution, token lookup and sending together.
type Dispatcher struct {
	defaults DefaultsSource
	tokens   TokenSource
	sender   Sender
	logger   *slog.Logger
	newID    func() string
}

// New constructs a Dispatcher. A nil logger discards output.
func New(defaults DefaultsSource, tokens TokenSource, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		defaults: defaults,
		tokens:   tokens,
		sender:   sender,
		logger:   logging.NewComponentLogger(logger, "dispatch"),
		newID:    uuid.NewString,
	}
}

// Notify runs one attempt. Resolution errors and ErrMissingToken are always
// returned; send failures are returned only when FailOnError is set.
func (d *Dispatcher) Notify(ctx context.Context, job Job) (Report, error) {
	report := Report{CorrelationID: d.newID()}
	ctx = logging.WithCorrelationID(ctx, report.CorrelationID)
	logger := logging.WithContext(ctx, d.logger).With(
		logging.String(logging.FieldOutcome, job.Outcome.String()),
	)

	if !resolver.ShouldNotify(job.Outcome, job.Preferences) {
		logger.Info("notification skipped by preferences")
		report.Skipped = true
		return report, nil
	}

	resolved, err := d.resolve(job)
	if err != nil {
		logging.ErrorWithContext(logger, "notification not resolved", "resolve_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set topic and credentials_id on the request or in the config defaults"),
		)
		return report, err
	}
	report.Resolved = resolved
	logger = logger.With(logging.String(logging.FieldTopic, resolved.Payload.Topic))

	token, ok := d.lookupToken(resolved.CredentialsID)
	if !ok {
		err := fmt.Errorf("%w %q", resolver.ErrMissingToken, resolved.CredentialsID)
		logging.ErrorWithContext(logger, "notification token unavailable", "token_missing",
			logging.String("credentials_id", resolved.CredentialsID),
			logging.String(logging.FieldErrorHint, "add the token to the credentials file or environment"),
		)
		return report, err
	}

	logger.Info("sending notification",
		logging.String("server_url", notifer.NormalizeBaseURL(resolved.ServerURL)),
		logging.Int("priority", resolved.Payload.Priority),
		logging.Strings("tags", resolved.Payload.Tags),
	)

	resp, err := d.sender.Send(ctx, notifer.Connection{BaseURL: resolved.ServerURL, Token: token}, resolved.Payload)
	if err != nil {
		attrs := []logging.Attr{
			logging.Error(err),
			logging.Int("status", notifer.StatusCode(err)),
			logging.String(logging.FieldErrorHint, failureHint(err)),
		}
		if job.Request.FailOnError {
			logging.ErrorWithContext(logger, "notification failed", "notification_failed", attrs...)
			return report, fmt.Errorf("notify %s: %w", resolved.Payload.Topic, err)
		}
		logging.WarnWithContext(logger, "notification failed; continuing", "notification_failed", attrs...)
		report.Failure = err
		return report, nil
	}

	report.Response = resp
	logger.Info("notification sent", logging.String("notification_id", resp.ID))
	return report, nil
}

// Preview resolves job without looking up tokens or sending anything.
// Preferences are not consulted; callers check resolver.ShouldNotify.
func (d *Dispatcher) Preview(job Job) (resolver.Resolved, error) {
	return d.resolve(job)
}

// TestConnection sends a fixed low-priority message to check that the server,
// topic and token work together. Unlike Notify, every failure is returned.
func (d *Dispatcher) TestConnection(ctx context.Context, serverURL, credentialsID, topic string) (*notifer.Response, error) {
	globals := d.snapshot()
	serverURL = firstNonEmpty(serverURL, globals.ServerURL)
	credentialsID = firstNonEmpty(credentialsID, globals.CredentialsID)
	topic = firstNonEmpty(topic, globals.Topic)

	if err := config.ValidateServerURL(serverURL); err != nil {
		return nil, err
	}
	if topic == "" {
		return nil, resolver.ErrMissingTopic
	}
	if credentialsID == "" {
		return nil, resolver.ErrMissingCredentials
	}
	token, ok := d.lookupToken(credentialsID)
	if !ok {
		return nil, fmt.Errorf("%w %q", resolver.ErrMissingToken, credentialsID)
	}

	ctx = logging.WithCorrelationID(ctx, d.newID())
	logger := logging.WithContext(ctx, d.logger).With(logging.String(logging.FieldTopic, topic))
	logger.Info("sending test notification", logging.String("server_url", notifer.NormalizeBaseURL(serverURL)))

	resp, err := d.sender.Send(ctx, notifer.Connection{BaseURL: serverURL, Token: token}, resolver.Payload{
		Topic:    topic,
		Message:  testMessage,
		Title:    testTitle,
		Priority: testPriority,
		Tags:     []string{testTag},
	})
	if err != nil {
		logging.WarnWithContext(logger, "test notification failed", "test_connection_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failureHint(err)),
		)
		return nil, err
	}
	logger.Info("test notification sent", logging.String("notification_id", resp.ID))
	return resp, nil
}

func (d *Dispatcher) resolve(job Job) (resolver.Resolved, error) {
	return resolver.Resolve(job.Request, job.Outcome, d.snapshot(), job.Build, job.Expand)
}

func (d *Dispatcher) snapshot() config.Defaults {
	if d.defaults == nil {
		return config.Default().Defaults
	}
	return d.defaults.Defaults()
}

func (d *Dispatcher) lookupToken(id string) (string, bool) {
	if d.tokens == nil {
		return "", false
	}
	token, ok := d.tokens.Lookup(id)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, notifer.ErrRejected):
		return "check the topic name and that the token grants publish access"
	case errors.Is(err, notifer.ErrTransport):
		return "check server_url and network connectivity"
	default:
		return "check logs for details"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
