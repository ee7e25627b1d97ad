package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisActionRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisActionRateLimiter
		if !l.Allow("u1", ActionPost) {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisActionRateLimiter{
			client: &mockRedisEvaler{result: 1},
			limits: defaultActionLimits,
			prefix: "rl:act:",
		}
		if l.Allow("   ", ActionPost) {
			t.Fatalf("expected empty user to be rejected")
		}
		if l.Allow("u1", "  ") {
			t.Fatalf("expected empty action to be rejected")
		}
	})

	t.Run("post action uses the tight limit", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 5}
		l := &redisActionRateLimiter{client: mock, limits: defaultActionLimits, prefix: "rl:act:"}
		if !l.Allow(" U1 ", ActionPost) {
			t.Fatalf("expected allow at count == max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "rl:act:u1:post" {
			t.Fatalf("unexpected key, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 60 {
			t.Fatalf("expected TTL seconds=60, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisActionAllowScript {
			t.Fatalf("expected script to match")
		}

		mock.result = 6
		if l.Allow("u1", ActionPost) {
			t.Fatalf("expected deny when count exceeds post max")
		}
	})

	t.Run("unknown action falls back to the default limit", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 20}
		l := &redisActionRateLimiter{client: mock, limits: defaultActionLimits, prefix: "rl:act:"}
		if !l.Allow("u1", ActionVote) {
			t.Fatalf("expected allow at default max")
		}

		mock.result = 21
		if l.Allow("u1", ActionVote) {
			t.Fatalf("expected deny above default max")
		}
	})

	t.Run("otp window TTL", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 1}
		l := &redisActionRateLimiter{client: mock, limits: defaultActionLimits, prefix: "rl:act:"}
		l.Allow("user@example.com", ActionOTP)
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 600 {
			t.Fatalf("expected TTL seconds=600, got %+v", mock.lastArgs)
		}
	})

	t.Run("redis error fails open", func(t *testing.T) {
		l := &redisActionRateLimiter{
			client: &mockRedisEvaler{err: errors.New("redis down")},
			limits: defaultActionLimits,
			prefix: "rl:act:",
		}
		if !l.Allow("u1", ActionPost) {
			t.Fatalf("expected fail-open on redis error")
		}
	})
}

func TestMemoryActionRateLimiter(t *testing.T) {
	l := NewActionRateLimiter()

	for i := 0; i < 5; i++ {
		if !l.Allow("u1", ActionPost) {
			t.Fatalf("expected allow %d within post limit", i+1)
		}
	}
	if l.Allow("u1", ActionPost) {
		t.Fatalf("expected deny after post limit")
	}

	// Other users and actions keep independent windows.
	if !l.Allow("u2", ActionPost) {
		t.Fatalf("expected other user to be unaffected")
	}
	if !l.Allow("u1", ActionVote) {
		t.Fatalf("expected other action to be unaffected")
	}
}

func TestLimitFor(t *testing.T) {
	if got := limitFor(defaultActionLimits, ActionPost); got.Max != 5 || got.Window != time.Minute {
		t.Fatalf("unexpected post limit: %+v", got)
	}
	if got := limitFor(defaultActionLimits, "unknown"); got != fallbackActionLimit {
		t.Fatalf("unexpected fallback limit: %+v", got)
	}
}
