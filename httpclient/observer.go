package httpclient

import "time"

// Attempt outcomes reported to an Observer.
const (
	OutcomeSuccess         = "success"
	OutcomeRequestError    = "request_error"
	OutcomeTransportError  = "transport_error"
	OutcomeTimeout         = "timeout"
	OutcomeHTTPError       = "http_error"
	OutcomeInvalidBody     = "invalid_body"
	OutcomeSchemaViolation = "schema_violation"
)

// Observer receives a report for every fetch attempt. Implementations must
// be safe for concurrent use and must not block.
type Observer interface {
	ObserveAttempt(label, outcome string, duration time.Duration)
	ObserveExhausted(label string)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, string, time.Duration) {}

func (nopObserver) ObserveExhausted(string) {}
