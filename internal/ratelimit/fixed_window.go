package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// RedisFixedWindow counts requests per subject in fixed windows backed by
// a Redis key with a TTL. Counting and arming the window expiry happen in
// one Lua script, so a key can never be left without a TTL; the script
// also re-arms the expiry if the key somehow lost it.
type RedisFixedWindow struct {
	client   redis.UniversalClient
	limit    int64
	window   time.Duration
	keySpace string
	script   *redis.Script
}

func NewRedisFixedWindow(client redis.UniversalClient, limit int, window time.Duration, keySpace string) (*RedisFixedWindow, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}
	if strings.TrimSpace(keySpace) == "" {
		keySpace = "jobtrack:ratelimit"
	}

	return &RedisFixedWindow{
		client:   client,
		limit:    int64(limit),
		window:   window,
		keySpace: keySpace,
		script: redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`),
	}, nil
}

func (l *RedisFixedWindow) Allow(ctx context.Context, subject string) (Decision, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "anonymous"
	}
	key := l.keySpace + ":" + subject

	windowMS := l.window.Milliseconds()
	if windowMS < 1 {
		windowMS = 1
	}

	raw, err := l.script.Run(ctx, l.client, []string{key}, windowMS).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("run fixed window script: %w", err)
	}

	values, ok := raw.([]any)
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("invalid fixed window response")
	}
	count, err := toInt64(values[0])
	if err != nil {
		return Decision{}, fmt.Errorf("parse count value: %w", err)
	}
	ttlMS, err := toInt64(values[1])
	if err != nil {
		return Decision{}, fmt.Errorf("parse ttl value: %w", err)
	}

	return l.decide(count, ttlMS), nil
}

// decide maps the script's (count, remaining-ttl-ms) pair to a Decision.
func (l *RedisFixedWindow) decide(count, ttlMS int64) Decision {
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	if count <= l.limit {
		return Decision{Allowed: true, Remaining: remaining}
	}

	retryAfter := time.Duration(ttlMS) * time.Millisecond
	if retryAfter <= 0 {
		retryAfter = l.window
	}
	return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}
}

func toInt64(in any) (int64, error) {
	switch v := in.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", in)
	}
}
