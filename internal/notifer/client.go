package notifer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"notifer/internal/config"
	"notifer/internal/logging"
	"notifer/internal/resolver"
)

const (
	userAgent = "notifer-cli/0.1.0"
	// DefaultTimeout bounds the dial, response-header and total request time.
	DefaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
	headerTopicToken = "X-Topic-Token"
	contentTypeJSON  = "application/json"
)

// Connection identifies the server and the bearer token for one send.
type Connection struct {
	BaseURL string
	Token   string
}

// Response is the server's record of a published notification.
type Response struct {
	ID       string   `json:"id"`
	Topic    string   `json:"topic"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

func (r Response) String() string {
	return fmt.Sprintf("Response{id=%q, topic=%q, priority=%d}", r.ID, r.Topic, r.Priority)
}

type requestBody struct {
	Message  string   `json:"message"`
	Title    string   `json:"title,omitempty"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
}

// Client publishes notifications. The zero value is not usable; call New.
type Client struct {
	timeout   time.Duration
	logger    *slog.Logger
	telemetry telemetry
}

// Option customizes a Client.
type Option func(*clientOptions)

// New builds a Client with the 30 second default timeout.
func New(opts ...Option) *Client {
	o := clientOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	return &Client{
		timeout:   o.timeout,
		logger:    logging.NewComponentLogger(o.logger, "notifer"),
		telemetry: newTelemetry(o.tracerProvider, o.meterProvider),
	}
}

// NormalizeBaseURL defaults an empty base URL and strips one trailing slash.
func NormalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return config.DefaultServerURL
	}
	return strings.TrimSuffix(baseURL, "/")
}

// BuildURL joins the normalized base URL and topic. The topic is inserted
// as-is without escaping.
func BuildURL(baseURL, topic string) string {
	return NormalizeBaseURL(baseURL) + "/" + topic
}

// Send performs a single POST of payload. It returns a *SendError
// classified as ErrRejected or ErrTransport on failure.
func (c *Client) Send(ctx context.Context, conn Connection, payload resolver.Payload) (resp *Response, err error) {
	target := BuildURL(conn.BaseURL, payload.Topic)

	ctx, finish := c.telemetry.start(ctx, payload)
	defer func() { finish(err) }()

	body, err := json.Marshal(requestBody{
		Message:  payload.Message,
		Title:    payload.Title,
		Priority: resolver.ClampInt(payload.Priority, resolver.MinPriority, resolver.MaxPriority),
		Tags:     payload.Tags,
	})
	if err != nil {
		return nil, transportError(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, transportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(headerTopicToken, conn.Token)
	req.Header.Set("User-Agent", userAgent)

	transport := newTransport(c.timeout)
	defer transport.CloseIdleConnections()
	httpClient := &http.Client{Timeout: c.timeout, Transport: c.telemetry.wrap(transport)}

	c.logger.Debug("sending notification", logging.String("url", target))

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(fmt.Errorf("read response: %w", err))
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		rejected := rejectedError(res.StatusCode, string(data))
		c.logger.Warn("notifer API rejected notification",
			logging.Int("status", res.StatusCode),
			logging.String("body", strings.TrimSpace(string(data))),
		)
		return nil, rejected
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, transportError(fmt.Errorf("decode response: %w", err))
	}
	c.logger.Debug("notification accepted", logging.String("id", out.ID))
	return &out, nil
}

func newTransport(timeout time.Duration) *http.Transport {
	dialer := &net.Dialer{Timeout: timeout}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
}
