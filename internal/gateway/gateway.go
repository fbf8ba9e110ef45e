// Package gateway is the sole HTTP boundary between the portal core and the
// backend service. Every outgoing request attaches the stored credential,
// every failure comes back as a classified domain error, and a rejected
// credential is cleared before the error propagates so no later request
// retries a known-bad token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"educonnect/internal/credential"
	dErrors "educonnect/pkg/domain-errors"
)

// requestTimeout is the fixed ceiling per request. A call that never resolves
// must not leave the session manager stuck in authenticating.
const requestTimeout = 10 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// Client talks JSON over HTTP to the backend service.
type Client struct {
	baseURL string
	http    *http.Client
	creds   credential.Store
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to point
// at httptest servers with short timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer replaces the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New constructs a gateway client for the given API origin.
func New(baseURL string, creds credential.Store, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		creds:   creds,
		logger:  logger,
		tracer:  otel.Tracer("educonnect/gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the backend's standard error shape.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// do issues one request with the stored credential attached. No retries, no
// backoff: every failure surfaces to the caller as a typed error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	tok, _ := c.creds.Current()
	return c.doWithToken(ctx, method, path, tok, body, out)
}

// doWithToken issues one request with an explicit bearer token (empty for
// anonymous calls). Logout uses it to revoke a credential that has already
// been cleared locally.
func (c *Client) doWithToken(ctx context.Context, method, path, token string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "gateway.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "transport failure")
		return c.classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		// Guarantee no request is ever retried with a known-bad credential.
		_ = c.creds.Clear()
		msg := readErrorMessage(resp.Body)
		c.logger.WarnContext(ctx, "credential rejected, cleared stored token",
			"method", method, "path", path)
		span.SetStatus(codes.Error, "unauthorized")
		return dErrors.New(dErrors.CodeUnauthorized, msg).WithStatus(resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		span.SetStatus(codes.Error, "server rejected")
		return dErrors.New(dErrors.CodeServerRejected, msg).WithStatus(resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.SetStatus(codes.Error, "malformed response")
			return dErrors.Wrap(err, dErrors.CodeMalformedResponse, "response did not match the expected shape")
		}
	}
	return nil
}

// classifyTransport maps transport-level failures onto the network code.
func (c *Client) classifyTransport(ctx context.Context, err error) error {
	msg := "could not reach the server"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	c.logger.WarnContext(ctx, "gateway transport failure", "error", err)
	return dErrors.Wrap(err, dErrors.CodeNetwork, msg)
}

// readErrorMessage decodes the standard {message, code?} error shape, falling
// back to a generic message when the body is not in that shape.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return "request failed"
	}
	var eb errorBody
	if jsonErr := json.Unmarshal(data, &eb); jsonErr != nil || eb.Message == "" {
		return "request failed"
	}
	return eb.Message
}
