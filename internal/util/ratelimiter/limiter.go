package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests with a token bucket.
// A nil Limiter or one created with a non-positive rate never blocks.
// It is safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond requests with the given burst.
// Burst values below 1 are raised to 1.
func New(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request may proceed or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed now, consuming a token if so
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// Enabled returns true if requests are actually paced
func (l *Limiter) Enabled() bool {
	return l != nil && l.limiter != nil
}

// Interval returns the minimum spacing between requests once the burst is used up.
// Returns 0 when limiting is disabled.
func (l *Limiter) Interval() time.Duration {
	if !l.Enabled() {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l.limiter.Limit()))
}
