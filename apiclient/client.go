// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/canteen-vote/metrics"
	"github.com/danielhkuo/canteen-vote/models"
)

const (
	requestTimeout = 10 * time.Second
	tracerName     = "github.com/danielhkuo/canteen-vote/apiclient"
	maxErrorBody   = 4 << 10
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrSetupFailed       = errors.New("account setup failed")
)

// APIError is a non-2xx answer other than 401
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("canteen API returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("canteen API returned HTTP %d: %s", e.Status, e.Message)
}

// SetupError carries the server's reason for rejecting account setup.
// It matches ErrSetupFailed with errors.Is.
type SetupError struct {
	Message string
}

func (e *SetupError) Error() string {
	if e.Message == "" {
		return ErrSetupFailed.Error()
	}
	return ErrSetupFailed.Error() + ": " + e.Message
}

func (e *SetupError) Unwrap() error {
	return ErrSetupFailed
}

// Client is the canteen API client.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics counts every call by endpoint and outcome
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer overrides the global OpenTelemetry tracer
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OAuthURL is the API entry point that starts the provider's consent flow.
// The browser is sent there; the client never calls it.
func (c *Client) OAuthURL(provider string) string {
	return c.baseURL + "/auth/" + provider
}

// do sends one request and decodes a 2xx JSON body into dst (if non-nil).
func (c *Client) do(ctx context.Context, endpoint, method, path, token string, body, dst interface{}) (err error) {
	ctx, span := c.tracer.Start(ctx, "canteen."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.ObserveUpstream(endpoint, err, Classify)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "canteen-web/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrNotAuthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

// errorMessage pulls "message" (or "error") out of an error body, falling back to the raw text
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body models.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// Classify maps an error to a short label for metrics and logs
func Classify(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrSetupFailed):
		return "setup_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.As(err, &apiErr):
		return "http_" + fmt.Sprint(apiErr.Status)
	default:
		return "error"
	}
}
