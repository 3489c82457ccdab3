package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a token bucket per key kept in memory. It allows perMinute
// requests per minute with bursts up to perMinute.
type LocalLimiter struct {
	mu        sync.Mutex
	entries   map[string]*localEntry
	rate      rate.Limit
	perMinute int
	now       func() time.Time
}

func NewLocalLimiter(perMinute int) *LocalLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &LocalLimiter{
		entries:   make(map[string]*localEntry),
		rate:      rate.Every(time.Minute / time.Duration(perMinute)),
		perMinute: perMinute,
		now:       time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.rate, l.perMinute)}
		l.entries[key] = e
	}
	e.lastSeen = now

	d := Decision{Limit: l.perMinute}
	if !e.limiter.AllowN(now, 1) {
		d.RetryAfter = time.Minute / time.Duration(l.perMinute)
		return d, nil
	}

	d.Allowed = true
	d.Remaining = int(e.limiter.TokensAt(now))
	return d, nil
}

// Cleanup drops keys not seen for longer than idle.
func (l *LocalLimiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	for k, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (l *LocalLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup(interval)
			}
		}
	}()
}

func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
