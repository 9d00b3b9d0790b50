package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"racebot/temperrors"
)

func newUpstream(t *testing.T, path, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if status != http.StatusOK || r.URL.Path != path {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out, _, err := runWithLogs(t, args...)
	return out, err
}

func runWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestQueryCmd_JSON(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("..", "ergast", "testdata", "results.json"))
	require.NoError(t, err)
	upstream, calls := newUpstream(t, "/2025/5/results/", string(body), http.StatusOK)

	out, err := run(t, "query", "results", "--season", "2025", "--round", "5", "--base-url", upstream.URL)

	require.NoError(t, err)
	var got struct {
		Data []struct {
			RaceName string `json:"raceName"`
		} `json:"data"`
		Pagination struct {
			Total string `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Saudi Arabian Grand Prix", got.Data[0].RaceName)
	assert.Equal(t, "2", got.Pagination.Total)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryCmd_LogsCarryTraceIDs(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("..", "ergast", "testdata", "results.json"))
	require.NoError(t, err)
	upstream, _ := newUpstream(t, "/2025/5/results/", string(body), http.StatusOK)

	_, logs, err := runWithLogs(t, "query", "results", "--season", "2025", "--round", "5",
		"--base-url", upstream.URL, "--log-level", "debug")
	require.NoError(t, err)

	var fetched map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		if entry["msg"] == "Fetch attempt succeeded" {
			fetched = entry
		}
	}
	require.NotNil(t, fetched, logs)
	assert.Len(t, fetched["trace_id"], 32)
	assert.Len(t, fetched["span_id"], 16)
	assert.Equal(t, "results", fetched["kind"])
}

func TestQueryCmd_YAML(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("..", "ergast", "testdata", "drivers.json"))
	require.NoError(t, err)
	upstream, _ := newUpstream(t, "/drivers/hamilton/", string(body), http.StatusOK)

	out, err := run(t, "query", "drivers", "--driverId", "hamilton", "--circuitId", "monza",
		"--format", "yaml", "--base-url", upstream.URL)

	require.NoError(t, err)
	var got struct {
		Data []map[string]any `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, "hamilton", got.Data[0]["driverId"])
}

func TestQueryCmd_Exhausted(t *testing.T) {
	upstream, calls := newUpstream(t, "", "", http.StatusBadGateway)

	out, err := run(t, "query", "seasons", "--base-url", upstream.URL, "--retries", "2", "--backoff", "1ms")

	require.Error(t, err)
	assert.ErrorIs(t, err, temperrors.ErrExhausted)
	assert.Contains(t, out, `"data": []`)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryCmd_InputErrors(t *testing.T) {
	upstream, calls := newUpstream(t, "", "", http.StatusOK)

	_, err := run(t, "query", "laps", "--season", "2024", "--base-url", upstream.URL)
	assert.ErrorIs(t, err, temperrors.ErrInvalidQuery)

	_, err = run(t, "query", "results", "--season", "last", "--base-url", upstream.URL)
	assert.ErrorIs(t, err, temperrors.ErrInvalidQuery)

	_, err = run(t, "query", "teams", "--base-url", upstream.URL)
	assert.ErrorIs(t, err, temperrors.ErrUnknownKind)

	assert.Equal(t, int32(0), calls.Load())
}

func TestQueryCmd_InvalidConfig(t *testing.T) {
	_, err := run(t, "query", "seasons", "--retries", "0")

	assert.ErrorContains(t, err, "invalid config")
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := run(t, "version", "--format", "json")

	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")
}

func TestTraceHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := setupLogger(&buf, slog.LevelInfo)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.With(slog.String("kind", "drivers")).InfoContext(ctx, "No drivers found")
	logger.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, sc.TraceID().String(), line["trace_id"])
	assert.Equal(t, sc.SpanID().String(), line["span_id"])
	assert.Equal(t, "drivers", line["kind"])
}
