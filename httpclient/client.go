// Package httpclient provides the retrying, validating HTTP fetch used by the
// Ergast gateway.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"racebot/telemetry"
	"racebot/temperrors"
)

const (
	// DefaultRetries is the number of attempts made when Options.Retries is unset
	DefaultRetries = 3

	// DefaultTimeout bounds a single attempt when Options.Timeout is unset
	DefaultTimeout = 10 * time.Second

	// DefaultBackoff is the wait before the second attempt when Options.Backoff is unset
	DefaultBackoff = 300 * time.Millisecond

	// MaxResponseSize is the maximum allowed response size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "racebot-gateway/1.0"
)

// Validator checks a decoded JSON document. *jsonschema.Schema satisfies it.
type Validator interface {
	Validate(v any) error
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(v any) error

// Validate calls f(v).
func (f ValidatorFunc) Validate(v any) error {
	return f(v)
}

// Options is the retry policy and request shape of one FetchWithRetry call.
// Zero values fall back to the package defaults.
type Options struct {
	Method  string
	Header  http.Header
	Retries int
	Timeout time.Duration
	Backoff time.Duration
	// Label names the fetch in logs and metrics, usually the resource kind.
	Label  string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Method == "" {
		o.Method = http.MethodGet
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	return o
}

// Client performs fetches with bounded retries. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	client   *http.Client
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the logger used when Options.Logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers an observer notified of every attempt.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithTracer sets the tracer that records one span per attempt.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a Client. Attempt deadlines come from Options.Timeout,
// so the default *http.Client carries no timeout of its own.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client:   &http.Client{},
		logger:   slog.New(slog.DiscardHandler),
		observer: nopObserver{},
		tracer:   otel.Tracer("racebot/httpclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchWithRetry fetches url until a response parses as JSON and passes
// validator, or until opts.Retries attempts have failed. Attempts are
// sequential; between attempt i and i+1 it waits opts.Backoff * 2^(i-1).
//
// On exhaustion the returned error is a *temperrors.ExhaustedError carrying
// the last attempt's failure. Cancelling ctx abandons the remaining attempts
// and returns the context error.
func (c *Client) FetchWithRetry(ctx context.Context, url string, opts Options, validator Validator) ([]byte, error) {
	opts = opts.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = c.logger
	}
	logger = logger.With(slog.String("url", url), slog.String("label", opts.Label))

	var (
		attempts  int
		lastErr   error
		permanent bool
	)

	operation := func() ([]byte, error) {
		attempts++
		attemptCtx, span := telemetry.StartSpan(ctx, c.tracer, "httpclient.attempt",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				telemetry.AttrURL.String(url),
				telemetry.AttrAttempt.Int(attempts),
			))
		defer span.End()

		start := time.Now()
		body, outcome, err := c.attempt(attemptCtx, url, opts, validator)
		elapsed := time.Since(start)

		c.observer.ObserveAttempt(opts.Label, outcome, elapsed)
		span.SetAttributes(telemetry.AttrOutcome.String(outcome))

		if err != nil {
			lastErr = err
			telemetry.RecordError(span, err)
			logger.WarnContext(attemptCtx, "Fetch attempt failed",
				slog.Int("attempt", attempts),
				slog.Int("max_attempts", opts.Retries),
				slog.String("outcome", outcome),
				slog.Duration("duration", elapsed),
				slog.Any("error", err))
			if outcome == OutcomeRequestError {
				permanent = true
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		logger.DebugContext(attemptCtx, "Fetch attempt succeeded",
			slog.Int("attempt", attempts),
			slog.Duration("duration", elapsed))
		return body, nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(newAttemptBackOff(opts.Backoff)),
		backoff.WithMaxTries(uint(opts.Retries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(_ error, wait time.Duration) {
			logger.DebugContext(ctx, "Waiting before next attempt", slog.Duration("wait", wait))
		}),
	)
	if err == nil {
		return body, nil
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("fetch %s cancelled after %d attempts: %w", url, attempts, context.Cause(ctx))
	}
	if permanent {
		// With a single attempt backoff stops on MaxTries before it unwraps
		// the permanent marker.
		var permanentErr *backoff.PermanentError
		if errors.As(err, &permanentErr) {
			return nil, permanentErr.Unwrap()
		}
		return nil, err
	}

	c.observer.ObserveExhausted(opts.Label)
	logger.ErrorContext(ctx, "All fetch attempts failed",
		slog.Int("attempts", attempts),
		slog.Any("error", lastErr))

	return nil, &temperrors.ExhaustedError{URL: url, Attempts: attempts, Err: lastErr}
}

// attempt runs one request under its own deadline and reports the outcome.
func (c *Client) attempt(ctx context.Context, url string, opts Options, validator Validator) ([]byte, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, opts.Method, url, nil)
	if err != nil {
		return nil, OutcomeRequestError, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if timedOut(ctx, attemptCtx) {
			return nil, OutcomeTimeout, fmt.Errorf("attempt timed out after %s: %w", opts.Timeout, err)
		}
		return nil, OutcomeTransportError, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, OutcomeHTTPError, temperrors.NewHTTPError(resp.StatusCode, url, resp.Status)
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, OutcomeInvalidBody, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize)
	}

	// +1 to detect if limit exceeded
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		if timedOut(ctx, attemptCtx) {
			return nil, OutcomeTimeout, fmt.Errorf("attempt timed out after %s: %w", opts.Timeout, err)
		}
		return nil, OutcomeTransportError, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, OutcomeInvalidBody, fmt.Errorf("response size exceeds maximum allowed size of %d bytes", MaxResponseSize)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, OutcomeInvalidBody, fmt.Errorf("failed to parse response body: %w", err)
	}

	if validator != nil {
		if err := validator.Validate(doc); err != nil {
			return nil, OutcomeSchemaViolation, &temperrors.ValidationError{URL: url, Err: err}
		}
	}

	return body, OutcomeSuccess, nil
}

func timedOut(parent, attemptCtx context.Context) bool {
	return parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
}
