package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is the process-local fixed-window backend. A bucket is
// created on first use with resetAt = now + window; once count reaches the
// limit further calls are rejected until the window rolls over.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	clock   Clock

	stopSweep chan struct{}
	sweepOnce sync.Once
}

func NewMemoryLimiter(clock Clock) *MemoryLimiter {
	if clock == nil {
		clock = SystemClock
	}
	return &MemoryLimiter{
		buckets:   make(map[string]*bucket),
		clock:     clock,
		stopSweep: make(chan struct{}),
	}
}

func (l *MemoryLimiter) Check(_ context.Context, key string, cfg Config) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 0, resetAt: now.Add(cfg.Window)}
		l.buckets[key] = b
	}

	if b.count >= cfg.MaxRequests {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    b.resetAt,
			RetryAfter: b.resetAt.Sub(now),
		}, nil
	}

	b.count++
	return Result{
		Allowed:   true,
		Remaining: cfg.MaxRequests - b.count,
		ResetAt:   b.resetAt,
	}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
	return nil
}

// StartSweeper evicts expired buckets periodically to bound memory.
func (l *MemoryLimiter) StartSweeper(interval time.Duration) {
	l.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					l.sweep()
				case <-l.stopSweep:
					return
				}
			}
		}()
	})
}

func (l *MemoryLimiter) StopSweeper() {
	select {
	case <-l.stopSweep:
	default:
		close(l.stopSweep)
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}
