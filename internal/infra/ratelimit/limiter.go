// Package ratelimit bounds how many notifications a recipient receives.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/runoshun/whatstask/internal/domain"
)

// Backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Policy is a per-key token bucket.
type Policy struct {
	PerMinute int
	Burst     int
}

// PerSecond returns the refill rate.
func (p Policy) PerSecond() float64 {
	return float64(p.PerMinute) / 60.0
}

// Limiter reports whether one more event for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New builds the limiter selected by cfg. It returns nil when limiting
// is disabled.
func New(cfg domain.RateLimitConfig) (Limiter, error) {
	if cfg.PerMinute <= 0 {
		return nil, nil
	}
	p := Policy{PerMinute: cfg.PerMinute, Burst: cfg.Burst}
	if p.Burst <= 0 {
		p.Burst = 1
	}
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(p), nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("rate limit backend redis requires redis_addr")
		}
		return NewRedis(cfg.RedisAddr, cfg.RedisDB, p), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}

// Memory keeps one token bucket per key in process memory.
type Memory struct {
	buckets map[string]*rate.Limiter
	now     func() time.Time
	policy  Policy
	mu      sync.Mutex
}

// NewMemory creates an in-process limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{
		buckets: make(map[string]*rate.Limiter),
		now:     time.Now,
		policy:  p,
	}
}

// Allow consumes a token from key's bucket if one is available.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	l, ok := m.buckets[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(m.policy.PerSecond()), m.policy.Burst)
		m.buckets[key] = l
	}
	m.mu.Unlock()
	return l.AllowN(m.now(), 1), nil
}
