package entrez

import (
	"math"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// Backoff computes retry delays: Initial * Multiplier^n, capped at Max.
// The sequence is non-decreasing for Multiplier >= 1.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

func BackoffFrom(cfg domain.BackoffConfig) Backoff {
	return Backoff{Initial: cfg.Initial, Max: cfg.Max, Multiplier: cfg.Multiplier}
}

// Delay returns the wait before retry number n (0 = first retry).
func (b Backoff) Delay(n int) time.Duration {
	if b.Initial <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(b.Initial) * math.Pow(mult, float64(n))
	if b.Max > 0 && d > float64(b.Max) {
		return b.Max
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}
