// Package ratelimit provides fixed-window request limiting keyed by
// (endpoint class, caller id). The in-memory backend is instance-local:
// with N replicas the effective global rate can reach N x the configured
// limit. Best-effort, not a hard SLA; the Redis backend tightens that when
// available.
package ratelimit

import (
	"context"
	"time"
)

// Endpoint classes. Each class carries its own window config.
const (
	ClassRead    = "read"
	ClassScan    = "scan"
	ClassTrading = "trading"
	ClassAdmin   = "admin"
)

type Config struct {
	MaxRequests int
	Window      time.Duration
}

type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter is the swappable limiting capability. Implementations must be
// safe for concurrent use.
type Limiter interface {
	Check(ctx context.Context, key string, cfg Config) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Clock is injectable for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default wall clock.
var SystemClock Clock = systemClock{}

// Key joins an endpoint class and caller identifier into a bucket key.
func Key(class, callerID string) string {
	return class + ":" + callerID
}
