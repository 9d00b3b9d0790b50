package ergast

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"racebot/temperrors"
)

// Field names a Query filter. The names match the query parameters of the
// HTTP API and the camelCase keys used upstream.
type Field string

const (
	FieldSeason          Field = "season"
	FieldRound           Field = "round"
	FieldCircuitID       Field = "circuitId"
	FieldConstructorID   Field = "constructorId"
	FieldDriverID        Field = "driverId"
	FieldFastestRank     Field = "fastestRank"
	FieldGridPosition    Field = "gridPosition"
	FieldResultsPosition Field = "resultsPosition"
	FieldStatusID        Field = "statusId"
	FieldPosition        Field = "position"
	FieldLapNumber       Field = "lapNumber"
	FieldStopNumber      Field = "stopNumber"
	FieldLimit           Field = "limit"
	FieldOffset          Field = "offset"
)

// Fields lists every filter in a stable order.
var Fields = []Field{
	FieldSeason, FieldRound, FieldCircuitID, FieldConstructorID, FieldDriverID,
	FieldFastestRank, FieldGridPosition, FieldResultsPosition, FieldStatusID,
	FieldPosition, FieldLapNumber, FieldStopNumber, FieldLimit, FieldOffset,
}

// IsText reports whether the field holds an identifier rather than a number.
func (f Field) IsText() bool {
	switch f {
	case FieldCircuitID, FieldConstructorID, FieldDriverID:
		return true
	}
	return false
}

// Query is a partially filled set of filters. A nil field is unset; any
// non-nil field is present, zero values included.
type Query struct {
	Season          *int    `json:"season,omitempty" yaml:"season,omitempty" validate:"omitempty,gte=0"`
	Round           *int    `json:"round,omitempty" yaml:"round,omitempty" validate:"omitempty,gte=1"`
	CircuitID       *string `json:"circuitId,omitempty" yaml:"circuitId,omitempty"`
	ConstructorID   *string `json:"constructorId,omitempty" yaml:"constructorId,omitempty"`
	DriverID        *string `json:"driverId,omitempty" yaml:"driverId,omitempty"`
	FastestRank     *int    `json:"fastestRank,omitempty" yaml:"fastestRank,omitempty" validate:"omitempty,gte=0"`
	GridPosition    *int    `json:"gridPosition,omitempty" yaml:"gridPosition,omitempty" validate:"omitempty,gte=0"`
	ResultsPosition *int    `json:"resultsPosition,omitempty" yaml:"resultsPosition,omitempty" validate:"omitempty,gte=0"`
	StatusID        *int    `json:"statusId,omitempty" yaml:"statusId,omitempty" validate:"omitempty,gte=0"`
	Position        *int    `json:"position,omitempty" yaml:"position,omitempty" validate:"omitempty,gte=0"`
	LapNumber       *int    `json:"lapNumber,omitempty" yaml:"lapNumber,omitempty" validate:"omitempty,gte=0"`
	StopNumber      *int    `json:"stopNumber,omitempty" yaml:"stopNumber,omitempty" validate:"omitempty,gte=0"`
	Limit           *int    `json:"limit,omitempty" yaml:"limit,omitempty" validate:"omitempty,gte=1,lte=100"`
	Offset          *int    `json:"offset,omitempty" yaml:"offset,omitempty" validate:"omitempty,gte=0"`
}

// Int returns a pointer to v, for filling Query literals.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v, for filling Query literals.
func String(v string) *string {
	return &v
}

// Value returns the textual form of field f and whether it is present.
func (q Query) Value(f Field) (string, bool) {
	if p := q.intField(f); p != nil {
		return strconv.Itoa(*p), true
	}
	if p := q.textField(f); p != nil {
		return *p, true
	}
	return "", false
}

// Has reports whether field f is present.
func (q Query) Has(f Field) bool {
	_, ok := q.Value(f)
	return ok
}

// Set parses raw into field f. Identifier fields accept any string, the
// others must be integers.
func (q *Query) Set(f Field, raw string) error {
	if f.IsText() {
		v := raw
		switch f {
		case FieldCircuitID:
			q.CircuitID = &v
		case FieldConstructorID:
			q.ConstructorID = &v
		case FieldDriverID:
			q.DriverID = &v
		}
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return &temperrors.InputError{Field: string(f), Reason: fmt.Sprintf("must be an integer, got %q", raw)}
	}

	switch f {
	case FieldSeason:
		q.Season = &n
	case FieldRound:
		q.Round = &n
	case FieldFastestRank:
		q.FastestRank = &n
	case FieldGridPosition:
		q.GridPosition = &n
	case FieldResultsPosition:
		q.ResultsPosition = &n
	case FieldStatusID:
		q.StatusID = &n
	case FieldPosition:
		q.Position = &n
	case FieldLapNumber:
		q.LapNumber = &n
	case FieldStopNumber:
		q.StopNumber = &n
	case FieldLimit:
		q.Limit = &n
	case FieldOffset:
		q.Offset = &n
	default:
		return &temperrors.InputError{Field: string(f), Reason: "is not a known filter"}
	}
	return nil
}

func (q Query) intField(f Field) *int {
	switch f {
	case FieldSeason:
		return q.Season
	case FieldRound:
		return q.Round
	case FieldFastestRank:
		return q.FastestRank
	case FieldGridPosition:
		return q.GridPosition
	case FieldResultsPosition:
		return q.ResultsPosition
	case FieldStatusID:
		return q.StatusID
	case FieldPosition:
		return q.Position
	case FieldLapNumber:
		return q.LapNumber
	case FieldStopNumber:
		return q.StopNumber
	case FieldLimit:
		return q.Limit
	case FieldOffset:
		return q.Offset
	}
	return nil
}

func (q Query) textField(f Field) *string {
	switch f {
	case FieldCircuitID:
		return q.CircuitID
	case FieldConstructorID:
		return q.ConstructorID
	case FieldDriverID:
		return q.DriverID
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		return name
	})
}

// validateQuery checks the range rules of the listed fields and converts the
// first failure into an input error for kind. Rules of other fields are not
// applied.
func validateQuery(kind Kind, q Query, fields []Field) error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &temperrors.InputError{Kind: string(kind), Field: "query", Reason: err.Error()}
	}
	for _, fe := range fieldErrs {
		if !slices.Contains(fields, Field(fe.Field())) {
			continue
		}
		return &temperrors.InputError{
			Kind:   string(kind),
			Field:  fe.Field(),
			Reason: describeRule(fe),
		}
	}
	return nil
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return "failed rule " + fe.Tag()
}
