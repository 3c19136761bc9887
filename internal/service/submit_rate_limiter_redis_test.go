package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	result     interface{}
	err        error
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args

	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
	} else {
		cmd.SetVal(m.result)
	}
	return cmd
}

func TestRedisSubmitRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var limiter *redisSubmitRateLimiter
		if !limiter.Allow("203.0.113.7") {
			t.Fatalf("expected nil limiter to allow")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		limiter := &redisSubmitRateLimiter{client: &mockRedisEvaler{result: int64(1)}, window: time.Minute, max: 5, prefix: "quiz:rl:"}
		if limiter.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: int64(3)}
		limiter := &redisSubmitRateLimiter{client: mock, window: 2 * time.Minute, max: 5, prefix: "quiz:rl:"}

		if !limiter.Allow("  203.0.113.7 ") {
			t.Fatalf("expected allow when count within max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "quiz:rl:203.0.113.7" {
			t.Fatalf("expected normalized prefixed key, got %v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected window seconds arg 120, got %v", mock.lastArgs)
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: int64(6)}
		limiter := &redisSubmitRateLimiter{client: mock, window: time.Minute, max: 5, prefix: "quiz:rl:"}
		if limiter.Allow("203.0.113.7") {
			t.Fatalf("expected deny when count exceeds max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		mock := &mockRedisEvaler{err: errors.New("redis down")}
		limiter := &redisSubmitRateLimiter{client: mock, window: time.Minute, max: 5, prefix: "quiz:rl:"}
		if !limiter.Allow("203.0.113.7") {
			t.Fatalf("expected allow when redis fails")
		}
	})
}
