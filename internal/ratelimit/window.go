// Package ratelimit caps requests per client with a sliding window and
// exposes it as HTTP middleware.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds; set only when Allowed is false
}

// Window is an in-memory sliding-window counter keyed by client. It is not
// shared across instances.
type Window struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

type WindowOption func(*Window)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) WindowOption {
	return func(w *Window) { w.now = now }
}

func NewWindow(opts ...WindowOption) *Window {
	w := &Window{
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Allow records one request for key when it fits in limit per window.
func (w *Window) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	stamps := prune(w.buckets[key], now.Add(-window))

	if len(stamps) >= limit {
		w.buckets[key] = stamps
		reset := now.Add(window)
		if len(stamps) > 0 {
			reset = stamps[0].Add(window)
		}
		return &Result{
			Allowed:    false,
			Limit:      limit,
			ResetAt:    reset,
			RetryAfter: retryAfter(reset.Sub(now)),
		}, nil
	}

	stamps = append(stamps, now)
	w.buckets[key] = stamps
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(window),
	}, nil
}

// Sweep drops keys whose requests all fell out of the window.
func (w *Window) Sweep(window time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-window)
	removed := 0
	for key, stamps := range w.buckets {
		if len(prune(stamps, cutoff)) == 0 {
			delete(w.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buckets)
}

// prune drops timestamps at or before cutoff. stamps is sorted.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}

func retryAfter(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
