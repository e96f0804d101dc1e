package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
)

func TestMemory_Allow_BurstThenRefill(t *testing.T) {
	// Setup
	m := NewMemory(Policy{PerMinute: 60, Burst: 2})
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	// Execute & Assert
	for i := range 2 {
		ok, err := m.Allow(ctx, "+15550001")
		require.NoError(t, err)
		assert.True(t, ok, "event %d within burst", i)
	}
	ok, _ := m.Allow(ctx, "+15550001")
	assert.False(t, ok)

	now = now.Add(time.Second)
	ok, _ = m.Allow(ctx, "+15550001")
	assert.True(t, ok)
}

func TestMemory_Allow_KeysAreIndependent(t *testing.T) {
	m := NewMemory(Policy{PerMinute: 1, Burst: 1})
	ctx := context.Background()

	a, _ := m.Allow(ctx, "a")
	b, _ := m.Allow(ctx, "b")
	again, _ := m.Allow(ctx, "a")

	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, again)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.RateLimitConfig
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", cfg: domain.RateLimitConfig{PerMinute: 0}, wantNil: true},
		{name: "memory default", cfg: domain.RateLimitConfig{PerMinute: 10}},
		{name: "memory explicit", cfg: domain.RateLimitConfig{PerMinute: 10, Backend: BackendMemory}},
		{name: "redis", cfg: domain.RateLimitConfig{PerMinute: 10, Backend: BackendRedis, RedisAddr: "localhost:6379"}},
		{name: "redis without addr", cfg: domain.RateLimitConfig{PerMinute: 10, Backend: BackendRedis}, wantErr: true},
		{name: "unknown", cfg: domain.RateLimitConfig{PerMinute: 10, Backend: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, l)
			} else {
				assert.NotNil(t, l)
			}
		})
	}
}

// TestRedis_Allow requires a Redis server on localhost:6379.
func TestRedis_Allow(t *testing.T) {
	r := NewRedis("localhost:6379", 0, Policy{PerMinute: 60, Burst: 1})
	defer func() { _ = r.Close() }()
	ctx := context.Background()
	if err := r.Ping(ctx); err != nil {
		t.Skip("redis not available")
	}
	r.prefix = "whatstask:test:" + t.Name() + ":" + time.Now().Format(time.RFC3339Nano) + ":"

	first, err := r.Allow(ctx, "recipient")
	require.NoError(t, err)
	second, err := r.Allow(ctx, "recipient")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}
