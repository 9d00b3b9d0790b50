package ergast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"racebot/httpclient"
	"racebot/models"
	"racebot/telemetry"
	"racebot/temperrors"
)

// DefaultBaseURL is the jolpica mirror of the Ergast API.
const DefaultBaseURL = "http://api.jolpi.ca/ergast/f1"

// Policy is the retry policy applied to every fetch.
type Policy struct {
	Retries int
	Timeout time.Duration
	Backoff time.Duration
}

// DefaultPolicy returns 3 attempts, 10s per attempt and a 300ms base backoff.
func DefaultPolicy() Policy {
	return Policy{
		Retries: httpclient.DefaultRetries,
		Timeout: httpclient.DefaultTimeout,
		Backoff: httpclient.DefaultBackoff,
	}
}

// Fetcher performs one retrying, validating fetch.
type Fetcher interface {
	FetchWithRetry(ctx context.Context, url string, opts httpclient.Options, validator httpclient.Validator) ([]byte, error)
}

// recordPaths locates the record array of every envelope. Standings are
// flattened across all of their lists.
var recordPaths = map[Kind]string{
	KindCircuits:             "MRData.CircuitTable.Circuits",
	KindConstructors:         "MRData.ConstructorTable.Constructors",
	KindConstructorStandings: "MRData.StandingsTable.StandingsLists.#.ConstructorStandings|@flatten",
	KindDriverStandings:      "MRData.StandingsTable.StandingsLists.#.DriverStandings|@flatten",
	KindDrivers:              "MRData.DriverTable.Drivers",
	KindLaps:                 "MRData.RaceTable.Races",
	KindPitStops:             "MRData.RaceTable.Races",
	KindQualifying:           "MRData.RaceTable.Races",
	KindRaces:                "MRData.RaceTable.Races",
	KindResults:              "MRData.RaceTable.Races",
	KindSeasons:              "MRData.SeasonTable.Seasons",
	KindSprint:               "MRData.RaceTable.Races",
	KindStatus:               "MRData.StatusTable.Status",
}

type ErgastAPI struct {
	url     string
	client  Fetcher
	schemas *Registry
	policy  Policy
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*ErgastAPI)

func WithBaseURL(url string) Option {
	return func(erg *ErgastAPI) {
		erg.url = url
	}
}

func WithFetcher(f Fetcher) Option {
	return func(erg *ErgastAPI) {
		erg.client = f
	}
}

func WithPolicy(p Policy) Option {
	return func(erg *ErgastAPI) {
		erg.policy = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(erg *ErgastAPI) {
		erg.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(erg *ErgastAPI) {
		erg.tracer = tracer
	}
}

func WithRegistry(r *Registry) Option {
	return func(erg *ErgastAPI) {
		erg.schemas = r
	}
}

// NewErgastAPI builds the gateway. Without options it talks to
// DefaultBaseURL with DefaultPolicy and the shared schema registry.
func NewErgastAPI(opts ...Option) (*ErgastAPI, error) {
	erg := &ErgastAPI{
		url:    DefaultBaseURL,
		policy: DefaultPolicy(),
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("racebot/ergast"),
	}
	for _, opt := range opts {
		opt(erg)
	}

	if erg.schemas == nil {
		schemas, err := DefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to build schema registry: %w", err)
		}
		erg.schemas = schemas
	}
	if erg.client == nil {
		erg.client = httpclient.NewClient(
			httpclient.WithLogger(erg.logger),
			httpclient.WithTracer(erg.tracer),
		)
	}
	return erg, nil
}

// BaseURL returns the upstream root every endpoint is resolved against.
func (erg *ErgastAPI) BaseURL() string {
	return erg.url
}

// GetRecords returns the raw records of kind matching q, in upstream order.
//
// An input error is returned with a nil slice and nothing is fetched. A
// resource with no matches yields an empty slice and a nil error. When every
// attempt fails the result is an empty slice together with an error that
// matches temperrors.ErrExhausted.
func (erg *ErgastAPI) GetRecords(ctx context.Context, kind Kind, q Query) ([]json.RawMessage, error) {
	records, _, err := erg.GetRecordsPage(ctx, kind, q)
	return records, err
}

// GetRecordsPage is GetRecords plus the paging metadata of the envelope.
func (erg *ErgastAPI) GetRecordsPage(ctx context.Context, kind Kind, q Query) ([]json.RawMessage, models.Pagination, error) {
	callID := uuid.NewString()
	ctx, span := telemetry.StartSpan(ctx, erg.tracer, "ergast.get_"+string(kind),
		trace.WithAttributes(
			telemetry.AttrKind.String(string(kind)),
			telemetry.AttrCallID.String(callID),
		))
	defer span.End()

	logger := erg.logger.With(slog.String("call_id", callID), slog.String("kind", string(kind)))

	url, err := Resolve(erg.url, kind, q)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.WarnContext(ctx, "Rejected query", slog.Any("error", err))
		return nil, models.Pagination{}, err
	}
	span.SetAttributes(telemetry.AttrURL.String(url))

	validator, err := erg.schemas.Validator(kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, models.Pagination{}, err
	}

	body, err := erg.client.FetchWithRetry(ctx, url, httpclient.Options{
		Method:  http.MethodGet,
		Header:  http.Header{"X-Request-Id": []string{callID}},
		Retries: erg.policy.Retries,
		Timeout: erg.policy.Timeout,
		Backoff: erg.policy.Backoff,
		Label:   string(kind),
		Logger:  logger,
	}, validator)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, temperrors.ErrExhausted) {
			logger.WarnContext(ctx, "Error fetching "+string(kind), slog.String("url", url), slog.Any("error", err))
		}
		return []json.RawMessage{}, models.Pagination{}, fmt.Errorf("in %s: %w", kind, err)
	}

	records := extractRecords(body, recordPaths[kind])
	if len(records) == 0 {
		logger.InfoContext(ctx, "No "+string(kind)+" found", slog.String("url", url))
	}
	span.SetAttributes(telemetry.AttrResultCount.Int(len(records)))

	return records, pagination(body), nil
}

func extractRecords(body []byte, path string) []json.RawMessage {
	records := []json.RawMessage{}
	gjson.GetBytes(body, path).ForEach(func(_, value gjson.Result) bool {
		records = append(records, json.RawMessage(value.Raw))
		return true
	})
	return records
}

func pagination(body []byte) models.Pagination {
	meta := gjson.GetBytes(body, "MRData")
	return models.Pagination{
		Limit:  meta.Get("limit").String(),
		Offset: meta.Get("offset").String(),
		Total:  meta.Get("total").String(),
	}
}

// fetchRecords decodes the records of kind into T. Failures keep the
// GetRecords contract: nil on input errors, empty otherwise.
func fetchRecords[T any](ctx context.Context, erg *ErgastAPI, kind Kind, q Query) ([]T, error) {
	raw, err := erg.GetRecords(ctx, kind, q)
	if raw == nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if decodeErr := json.Unmarshal(r, &item); decodeErr != nil {
			return []T{}, fmt.Errorf("in %s: failed to decode record: %w", kind, decodeErr)
		}
		out = append(out, item)
	}
	return out, err
}

func (erg *ErgastAPI) GetCircuits(ctx context.Context, q Query) ([]models.Circuit, error) {
	return fetchRecords[models.Circuit](ctx, erg, KindCircuits, q)
}

func (erg *ErgastAPI) GetConstructors(ctx context.Context, q Query) ([]models.Constructor, error) {
	return fetchRecords[models.Constructor](ctx, erg, KindConstructors, q)
}

// GetConstructorStandings requires q.Season.
func (erg *ErgastAPI) GetConstructorStandings(ctx context.Context, q Query) ([]models.ConstructorStanding, error) {
	return fetchRecords[models.ConstructorStanding](ctx, erg, KindConstructorStandings, q)
}

// GetDriverStandings requires q.Season.
func (erg *ErgastAPI) GetDriverStandings(ctx context.Context, q Query) ([]models.DriverStanding, error) {
	return fetchRecords[models.DriverStanding](ctx, erg, KindDriverStandings, q)
}

func (erg *ErgastAPI) GetDrivers(ctx context.Context, q Query) ([]models.Driver, error) {
	return fetchRecords[models.Driver](ctx, erg, KindDrivers, q)
}

// GetLaps requires q.Season and q.Round. Each race carries its Laps.
func (erg *ErgastAPI) GetLaps(ctx context.Context, q Query) ([]models.Race, error) {
	return fetchRecords[models.Race](ctx, erg, KindLaps, q)
}

// GetPitStops requires q.Season and q.Round. Each race carries its PitStops.
func (erg *ErgastAPI) GetPitStops(ctx context.Context, q Query) ([]models.Race, error) {
	return fetchRecords[models.Race](ctx, erg, KindPitStops, q)
}

func (erg *ErgastAPI) GetQualifying(ctx context.Context, q Query) ([]models.Race, error) {
	return fetchRecords[models.Race](ctx, erg, KindQualifying, q)
}

func (erg *ErgastAPI) GetRaces(ctx context.Context, q Query) ([]models.Race, error) {
	return fetchRecords[models.Race](ctx, erg, KindRaces, q)
}

func (erg *ErgastAPI) GetResults(ctx context.Context, q Query) ([]models.Race, error) {
	return fetchRecords[models.Race](ctx, erg, KindResults, q)
}

func (erg *ErgastAPI) GetSeasons(ctx context.Context, q Query) ([]models.Season, error) {
	return fetchRecords[models.Season](ctx, erg, KindSeasons, q)
}

func (erg *ErgastAPI) GetSprint(ctx context.Context, q Query) ([]models.Race, error) {
	return fetchRecords[models.Race](ctx, erg, KindSprint, q)
}

func (erg *ErgastAPI) GetStatus(ctx context.Context, q Query) ([]models.Status, error) {
	return fetchRecords[models.Status](ctx, erg, KindStatus, q)
}
