// Package server exposes the gateway as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"racebot/ergast"
	"racebot/metrics"
	"racebot/models"
	"racebot/temperrors"
	"racebot/versions"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 60 * time.Second

	// statusClientClosedRequest is nginx's status for a request the client
	// abandoned before the response was written.
	statusClientClosedRequest = 499
)

// Gateway is the part of ergast.ErgastAPI the HTTP API needs.
type Gateway interface {
	GetRecordsPage(ctx context.Context, kind ergast.Kind, q ergast.Query) ([]json.RawMessage, models.Pagination, error)
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo    *echo.Echo
	address string
	gateway Gateway
	logger  *slog.Logger
}

type options struct {
	tracerProvider trace.TracerProvider
}

// Option configures New.
type Option func(*options)

// WithTracerProvider sets the provider of request spans. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// New builds the Echo server and registers routes. A nil gatherer leaves
// /metrics unregistered.
func New(address string, gateway Gateway, gatherer prometheus.Gatherer, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{tracerProvider: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout

	s := &Server{Echo: e, address: address, gateway: gateway, logger: logger}

	e.Use(middleware.Recover(), tracing(o.tracerProvider), middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.Any("error", v.Error))
			}
			logger.LogAttrs(c.Request().Context(), level, "Request", attrs...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return OK(c, map[string]string{"status": "ok"}, "")
	})
	e.GET("/version", func(c echo.Context) error {
		return OK(c, versions.GetVersionInfo(), "")
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(gatherer)))
	}

	api := e.Group("/api/f1")
	api.GET("", s.listKinds)
	api.GET("/:kind", s.queryKind)

	return s
}

type kindInfo struct {
	Kind    ergast.Kind    `json:"kind"`
	Filters []ergast.Field `json:"filters"`
}

func (s *Server) listKinds(c echo.Context) error {
	kinds := make([]kindInfo, 0, len(ergast.Kinds))
	for _, k := range ergast.Kinds {
		kinds = append(kinds, kindInfo{Kind: k, Filters: ergast.Filters(k)})
	}
	return OK(c, kinds, "")
}

func (s *Server) queryKind(c echo.Context) error {
	kind, ok := ergast.ParseKind(c.Param("kind"))
	if !ok {
		return NotFound(c, "unknown resource", "no resource named "+c.Param("kind"))
	}

	q, err := bindQuery(c)
	if err != nil {
		return BadRequest(c, "invalid query", err.Error())
	}

	records, page, err := s.gateway.GetRecordsPage(c.Request().Context(), kind, q)
	switch {
	case err == nil:
		return Records(c, http.StatusOK, records, &page, "")
	case errors.Is(err, temperrors.ErrInvalidQuery):
		return BadRequest(c, "invalid query", err.Error())
	case errors.Is(err, temperrors.ErrExhausted):
		return Records(c, http.StatusServiceUnavailable, records, nil, "data source unavailable")
	case errors.Is(err, context.Canceled):
		s.logger.DebugContext(c.Request().Context(), "Client went away", slog.String("kind", string(kind)))
		return Error(c, statusClientClosedRequest, "request cancelled", err.Error())
	default:
		s.logger.ErrorContext(c.Request().Context(), "Query failed", slog.String("kind", string(kind)), slog.Any("error", err))
		return InternalError(c, "query failed", err.Error())
	}
}

// bindQuery copies every known query parameter into an ergast.Query.
// Parameters that are absent stay nil; present ones keep their value even
// when it is zero or empty.
func bindQuery(c echo.Context) (ergast.Query, error) {
	var q ergast.Query
	params := c.QueryParams()
	for _, f := range ergast.Fields {
		if !params.Has(string(f)) {
			continue
		}
		if err := q.Set(f, params.Get(string(f))); err != nil {
			return ergast.Query{}, err
		}
	}
	return q, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.InfoContext(ctx, "Starting HTTP API", slog.String("address", s.address))
	if err := s.Echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
