package core

// limiter.go bounds how many conversions run at once.
//
// Each conversion is a synchronous in-memory pass, but the HTTP server can
// receive many uploads together. A weighted semaphore caps parallel work;
// callers that cannot get a slot within maxWait receive ErrTooManyConversions.
// WaitForDrain acquires the full weight, so it returns only once every
// in-flight conversion has released its slot.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyConversions is returned when every conversion slot stays busy
// for longer than the limiter's wait time.
var ErrTooManyConversions = errors.New("too many conversions in progress, please try again later")

// DefaultMaxConcurrentConversions is the slot count used for non-positive limits.
const DefaultMaxConcurrentConversions = 4

// DefaultMaxWaitTime is how long Acquire waits when no wait time is configured.
const DefaultMaxWaitTime = 10 * time.Second

// ConversionLimiter restricts the number of simultaneous conversions.
type ConversionLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewConversionLimiter allows at most maxConcurrent conversions at once.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentConversions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &ConversionLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a conversion slot.
// The caller must call Release once the conversion finishes.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyConversions
	}

	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (l *ConversionLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ConversionLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of conversions holding a slot.
func (l *ConversionLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the configured slot count.
func (l *ConversionLimiter) MaxConcurrent() int {
	return int(l.max)
}

// WaitForDrain blocks until no conversion holds a slot or ctx ends.
// New conversions are held back while it waits.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.max); err != nil {
		return err
	}
	l.sem.Release(l.max)
	return nil
}

// LimiterStatus is a snapshot of limiter usage.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for health checks.
func (l *ConversionLimiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     int(l.max) - active,
		MaxConcurrent: int(l.max),
	}
}
