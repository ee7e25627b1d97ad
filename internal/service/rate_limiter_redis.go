package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisActionAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisActionRateLimiter struct {
	client redisEvaler
	limits map[string]ActionLimit
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisActionRateLimiter creates a Redis-backed limiter shared across
// instances. Counting uses a single INCR+EXPIRE script per call; on Redis
// errors the limiter fails open.
func NewRedisActionRateLimiter(client *redis.Client) ActionRateLimiter {
	if client == nil {
		return nil
	}
	return &redisActionRateLimiter{
		client: client,
		limits: defaultActionLimits,
		prefix: "rl:act:",
	}
}

func (l *redisActionRateLimiter) Allow(userID, action string) bool {
	if l == nil || l.client == nil {
		return true
	}
	userID = strings.ToLower(strings.TrimSpace(userID))
	action = strings.ToLower(strings.TrimSpace(action))
	if userID == "" || action == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	limit := limitFor(l.limits, action)
	redisKey := l.prefix + userID + ":" + action
	seconds := int(limit.Window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisActionAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= limit.Max
}
