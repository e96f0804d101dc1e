package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and consumes a bucket atomically.
// KEYS[1] bucket key; ARGV rate/sec, capacity, now (seconds), ttl (seconds).
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if not tokens or not last then
    tokens = capacity
    last = now
end

local elapsed = now - last
if elapsed > 0 then
    tokens = math.min(capacity, tokens + elapsed * rate)
    last = now
end

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last)
redis.call("EXPIRE", key, ttl)
return allowed
`)

// Redis shares buckets between processes through a Redis server.
type Redis struct {
	client redis.UniversalClient
	now    func() time.Time
	prefix string
	policy Policy
}

// NewRedis connects to addr.
func NewRedis(addr string, db int, p Policy) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{Addr: addr, DB: db}), p)
}

// NewRedisWithClient uses an existing client.
func NewRedisWithClient(client redis.UniversalClient, p Policy) *Redis {
	return &Redis{client: client, now: time.Now, prefix: "whatstask:ratelimit:", policy: p}
}

// Allow runs the bucket script for key.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	perSec := r.policy.PerSecond()
	// Keep the bucket until it would be full again.
	ttl := int64(math.Ceil(float64(r.policy.Burst)/perSec)) + 1
	now := float64(r.now().UnixMicro()) / 1e6

	allowed, err := tokenBucketScript.Run(ctx, r.client, []string{r.prefix + key},
		perSec, r.policy.Burst, now, ttl).Int64()
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return allowed == 1, nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
