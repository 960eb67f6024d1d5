// Package ratelimit implements fixed-window admission control: events inside
// the trailing window are counted, excess calls are hard-denied, and capacity
// returns exactly as the oldest event ages out. No smoothing.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is one operation class's quota. Safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	maxOps int
	window time.Duration
	events []time.Time
	now    func() time.Time
}

// New creates a limiter permitting maxOps events per trailing window.
func New(maxOps int, window time.Duration) *Limiter {
	return &Limiter{maxOps: maxOps, window: window, now: time.Now}
}

// Allow prunes events older than the window, then either records the call
// and permits it, or denies without recording.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.events) >= l.maxOps {
		return false
	}
	l.events = append(l.events, now)
	return true
}

// Reset clears all recorded events. Configuration is untouched.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = l.events[:0]
}

// InWindow returns how many events currently count against the quota.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.events)
}

// Limits returns the configured (maxOps, window).
func (l *Limiter) Limits() (int, time.Duration) {
	return l.maxOps, l.window
}

// prune drops events that have aged out. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	kept := l.events[:0]
	for _, t := range l.events {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	l.events = kept
}
