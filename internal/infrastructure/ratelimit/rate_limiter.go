package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionCreateOrder = "create_order"
	ActionHTTP        = "http"
)

// Policy is a token bucket: Limit tokens per second, up to Burst at once.
type Policy struct {
	Limit rate.Limit
	Burst int
}

// Per returns a policy allowing n events per interval with a burst of n.
func Per(n int, interval time.Duration) Policy {
	return Policy{Limit: rate.Every(interval / time.Duration(n)), Burst: n}
}

var defaultPolicies = map[string]Policy{
	ActionSendMessage: Per(10, time.Minute),
	ActionCreateChat:  Per(5, time.Hour),
	ActionCreateOrder: Per(10, time.Minute),
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one limiter per (key, action).
type RateLimiter struct {
	mu       sync.Mutex
	entries  map[string]*entry
	policies map[string]Policy
	fallback Policy
	now      func() time.Time
}

// NewRateLimiter uses fallback for actions without a dedicated policy.
func NewRateLimiter(fallback Policy) *RateLimiter {
	policies := make(map[string]Policy, len(defaultPolicies))
	for action, p := range defaultPolicies {
		policies[action] = p
	}
	return &RateLimiter{
		entries:  make(map[string]*entry),
		policies: policies,
		fallback: fallback,
		now:      time.Now,
	}
}

// SetPolicy overrides the policy for an action. Existing limiters keep their
// old policy until they are swept.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mu.Lock()
	rl.policies[action] = p
	rl.mu.Unlock()
}

func (rl *RateLimiter) limiter(key, action string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	id := key + ":" + action
	e, ok := rl.entries[id]
	if !ok {
		p, ok := rl.policies[action]
		if !ok {
			p = rl.fallback
		}
		e = &entry{limiter: rate.NewLimiter(p.Limit, p.Burst)}
		rl.entries[id] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Allow consumes one token. When the bucket is empty it reports how long
// until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := rl.now()
	lim := rl.limiter(key, action, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Hour
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Sweep drops limiters idle for longer than idle.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	cutoff := rl.now().Add(-idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for id, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle limiters every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep(idle)
		}
	}
}
