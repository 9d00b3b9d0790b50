package httpclient_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"racebot/httpclient"
	"racebot/telemetry"
	"racebot/temperrors"
)

// newTestServer creates a new test server with keep-alives disabled.
// This prevents flaky tests when running in parallel, as closing a server
// with keep-alives enabled can affect other tests sharing the HTTP transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

type recordingObserver struct {
	mu        sync.Mutex
	outcomes  []string
	exhausted int
}

func (o *recordingObserver) ObserveAttempt(_, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) ObserveExhausted(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exhausted++
}

var rejectAll = httpclient.ValidatorFunc(func(any) error {
	return errors.New("MRData is required")
})

func fastOptions(retries int) httpclient.Options {
	return httpclient.Options{
		Retries: retries,
		Timeout: time.Second,
		Backoff: time.Millisecond,
		Label:   "test",
	}
}

func TestFetchWithRetry_SuccessOnFirstAttempt(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, httpclient.UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"MRData":{"total":"0"}}`))
	}))
	defer server.Close()

	observer := &recordingObserver{}
	client := httpclient.NewClient(httpclient.WithObserver(observer))

	body, err := client.FetchWithRetry(context.Background(), server.URL, fastOptions(3), nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"MRData":{"total":"0"}}`, string(body))
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []string{httpclient.OutcomeSuccess}, observer.outcomes)
	assert.Zero(t, observer.exhausted)
}

func TestFetchWithRetry_ExactAttemptsOnSchemaViolation(t *testing.T) {
	t.Parallel()

	for _, retries := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("%d attempts", retries), func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				_, _ = w.Write([]byte(`{"unexpected":true}`))
			}))
			defer server.Close()

			observer := &recordingObserver{}
			client := httpclient.NewClient(httpclient.WithObserver(observer))

			body, err := client.FetchWithRetry(context.Background(), server.URL, fastOptions(retries), rejectAll)

			require.Error(t, err)
			assert.Nil(t, body)
			assert.Equal(t, int32(retries), hits.Load())
			assert.ErrorIs(t, err, temperrors.ErrExhausted)

			var exhausted *temperrors.ExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.Equal(t, retries, exhausted.Attempts)

			var validationErr *temperrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)

			assert.Len(t, observer.outcomes, retries)
			assert.Equal(t, 1, observer.exhausted)
		})
	}
}

func TestFetchWithRetry_SucceedsOnLaterAttempt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		failFirst int
		fail      func(w http.ResponseWriter)
		outcome   string
	}{
		{
			name:      "server error then success",
			failFirst: 1,
			fail: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			outcome: httpclient.OutcomeHTTPError,
		},
		{
			name:      "invalid json twice then success",
			failFirst: 2,
			fail: func(w http.ResponseWriter) {
				_, _ = w.Write([]byte(`{not json`))
			},
			outcome: httpclient.OutcomeInvalidBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if int(hits.Add(1)) <= tt.failFirst {
					tt.fail(w)
					return
				}
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer server.Close()

			observer := &recordingObserver{}
			client := httpclient.NewClient(httpclient.WithObserver(observer))

			body, err := client.FetchWithRetry(context.Background(), server.URL, fastOptions(3), nil)

			require.NoError(t, err)
			assert.JSONEq(t, `{"ok":true}`, string(body))
			assert.Equal(t, int32(tt.failFirst+1), hits.Load())
			require.Len(t, observer.outcomes, tt.failFirst+1)
			assert.Equal(t, tt.outcome, observer.outcomes[0])
			assert.Equal(t, httpclient.OutcomeSuccess, observer.outcomes[tt.failFirst])
		})
	}
}

func TestFetchWithRetry_HTTPErrorIsKept(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := httpclient.NewClient()

	_, err := client.FetchWithRetry(context.Background(), server.URL, fastOptions(2), nil)

	var httpErr *temperrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, server.URL, httpErr.URL)
}

func TestFetchWithRetry_AttemptTimeout(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	observer := &recordingObserver{}
	client := httpclient.NewClient(httpclient.WithObserver(observer))

	opts := fastOptions(2)
	opts.Timeout = 50 * time.Millisecond

	_, err := client.FetchWithRetry(context.Background(), server.URL, opts, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, temperrors.ErrExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{httpclient.OutcomeTimeout, httpclient.OutcomeTimeout}, observer.outcomes)
}

func TestFetchWithRetry_BackoffBetweenAttempts(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		times []time.Time
	)
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := httpclient.NewClient()

	opts := fastOptions(3)
	opts.Backoff = 40 * time.Millisecond

	_, err := client.FetchWithRetry(context.Background(), server.URL, opts, nil)
	require.ErrorIs(t, err, temperrors.ErrExhausted)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, times, 3)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), 40*time.Millisecond)
	assert.GreaterOrEqual(t, times[2].Sub(times[1]), 80*time.Millisecond)
}

func TestFetchWithRetry_OuterCancellation(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	observer := &recordingObserver{}
	client := httpclient.NewClient(httpclient.WithObserver(observer))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	opts := fastOptions(5)
	opts.Backoff = time.Hour

	start := time.Now()
	_, err := client.FetchWithRetry(ctx, server.URL, opts, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, temperrors.ErrExhausted)
	assert.Equal(t, int32(1), hits.Load())
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Zero(t, observer.exhausted)
}

func TestFetchWithRetry_InvalidRequestIsPermanent(t *testing.T) {
	t.Parallel()

	observer := &recordingObserver{}
	client := httpclient.NewClient(httpclient.WithObserver(observer))

	opts := fastOptions(3)
	opts.Method = "BAD METHOD"

	_, err := client.FetchWithRetry(context.Background(), "http://127.0.0.1/", opts, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, temperrors.ErrExhausted)
	assert.Contains(t, err.Error(), "failed to create request")
	assert.Equal(t, []string{httpclient.OutcomeRequestError}, observer.outcomes)
}

func TestFetchWithRetry_PermanentErrorShapeIndependentOfRetries(t *testing.T) {
	t.Parallel()

	for _, retries := range []int{1, 3} {
		t.Run(fmt.Sprintf("retries=%d", retries), func(t *testing.T) {
			t.Parallel()

			client := httpclient.NewClient()
			opts := fastOptions(retries)
			opts.Method = "BAD METHOD"

			_, err := client.FetchWithRetry(context.Background(), "http://127.0.0.1/", opts, nil)

			require.Error(t, err)
			var permanentErr *backoff.PermanentError
			assert.False(t, errors.As(err, &permanentErr))
			assert.True(t, strings.HasPrefix(err.Error(), "failed to create request"))
		})
	}
}

func TestFetchWithRetry_AttemptSpans(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var calls atomic.Int32
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"MRData": {}}`))
	}))
	defer server.Close()

	client := httpclient.NewClient(httpclient.WithTracer(tp.Tracer("test")))

	_, err := client.FetchWithRetry(context.Background(), server.URL, fastOptions(3), nil)

	require.NoError(t, err)
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, telemetry.AttrOutcome.String(httpclient.OutcomeHTTPError))
	assert.Contains(t, spans[1].Attributes, telemetry.AttrAttempt.Int(2))
	assert.Contains(t, spans[1].Attributes, telemetry.AttrOutcome.String(httpclient.OutcomeSuccess))
}

func TestFetchWithRetry_CustomHeaders(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.Header.Get("X-Call-Id"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := httpclient.NewClient()

	opts := fastOptions(1)
	opts.Header = http.Header{"X-Call-Id": []string{"abc"}}

	body, err := client.FetchWithRetry(context.Background(), server.URL, opts, nil)

	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}
