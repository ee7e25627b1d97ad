package service

import (
	"sync"
	"time"
)

// ActionRateLimiter limits how often a user may perform a write action.
// It is injected into the services that need it, so the scoring core and
// the business services stay free of hidden per-process state.
type ActionRateLimiter interface {
	Allow(userID, action string) bool
}

// ActionLimit is a window/max pair for one action type.
type ActionLimit struct {
	Window time.Duration
	Max    int
}

// Posting is deliberately tighter than reads and votes.
var defaultActionLimits = map[string]ActionLimit{
	ActionPost: {Window: time.Minute, Max: 5},
	ActionOTP:  {Window: 10 * time.Minute, Max: 3},
}

var fallbackActionLimit = ActionLimit{Window: time.Minute, Max: 20}

// Action names known to the limiter.
const (
	ActionPost = "post"
	ActionVote = "vote"
	ActionOTP  = "otp"
)

func limitFor(limits map[string]ActionLimit, action string) ActionLimit {
	if l, ok := limits[action]; ok && l.Max > 0 && l.Window > 0 {
		return l
	}
	return fallbackActionLimit
}

type memoryActionRateLimiter struct {
	mu     sync.Mutex
	limits map[string]ActionLimit
	hits   map[string][]time.Time
}

// NewActionRateLimiter creates an in-memory limiter with the default
// per-action limits. Suitable for single-instance deployments and tests;
// multi-instance deployments should use the Redis limiter.
func NewActionRateLimiter() ActionRateLimiter {
	return &memoryActionRateLimiter{
		limits: defaultActionLimits,
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryActionRateLimiter) Allow(userID, action string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := limitFor(l.limits, action)
	key := userID + ":" + action
	now := time.Now().UTC()
	cutoff := now.Add(-limit.Window)

	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= limit.Max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}
