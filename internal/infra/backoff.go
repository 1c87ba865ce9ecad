package infra

import (
	"time"
)

// Backoff computes capped exponential delays: Base * 2^retry, at most Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff is used for WebSocket reconnects.
var DefaultBackoff = Backoff{Base: 1 * time.Second, Max: 60 * time.Second}

// Delay returns the wait before retry number retryCount (0-based).
// Negative counts return Base.
func (b Backoff) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return b.Base
	}
	// 2^30 * 1ns already exceeds any sane cap; avoid overflowing the shift
	if retryCount > 30 {
		return b.Max
	}

	d := b.Base * time.Duration(1<<retryCount)
	if d > b.Max || d <= 0 {
		return b.Max
	}
	return d
}

// CalculateBackoff is DefaultBackoff.Delay.
func CalculateBackoff(retryCount int) time.Duration {
	return DefaultBackoff.Delay(retryCount)
}
