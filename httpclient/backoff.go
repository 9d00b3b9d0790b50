package httpclient

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// newAttemptBackOff yields base, 2*base, 4*base, ... with no jitter and no cap.
func newAttemptBackOff(base time.Duration) *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
	}
}
