package figma

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// RateLimitConfig configures the client-side token bucket.
type RateLimitConfig struct {
	// Capacity is the bucket size (maximum burst).
	Capacity int `json:"capacity" yaml:"capacity"`
	// RefillPerSecond is the number of tokens added per second.
	RefillPerSecond float64 `json:"refill_per_second" yaml:"refill_per_second"`
	// Disabled turns client-side throttling off.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// DefaultRateLimitConfig returns the default token bucket settings.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Capacity:        constants.DefaultRateLimitCapacity,
		RefillPerSecond: constants.DefaultRateLimitRefillPerSecond,
	}
}

// RateLimiter is a token bucket that refills lazily on each Acquire.
// Callers that have to wait are served in arrival order.
// A nil *RateLimiter never throttles.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   int
	refillRate float64
	lastRefill time.Time
	waiters    list.List // of chan struct{}
}

// NewRateLimiter creates a full token bucket.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	if config.Disabled {
		return nil
	}

	capacity := config.Capacity
	if capacity < 1 {
		capacity = constants.DefaultRateLimitCapacity
	}

	refill := config.RefillPerSecond
	if refill <= 0 {
		refill = constants.DefaultRateLimitRefillPerSecond
	}

	return &RateLimiter{
		tokens:     float64(capacity),
		capacity:   capacity,
		refillRate: refill,
		lastRefill: time.Now(),
	}
}

// Acquire waits until a token is available and consumes it. The only error
// is the context's, returned when ctx ends before a token is granted; in that
// case no token is consumed.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	rl.refill(time.Now())

	if rl.waiters.Len() == 0 && rl.tokens >= 1 {
		rl.tokens--
		rl.mu.Unlock()

		return nil
	}

	turn := make(chan struct{}, 1)
	elem := rl.waiters.PushBack(turn)
	rl.mu.Unlock()

	for {
		rl.mu.Lock()

		isHead := rl.waiters.Front() == elem

		var wait time.Duration

		if isHead {
			rl.refill(time.Now())

			if rl.tokens >= 1 {
				rl.tokens--
				rl.removeLocked(elem)
				rl.mu.Unlock()

				return nil
			}

			wait = time.Duration((1 - rl.tokens) / rl.refillRate * float64(time.Second))
			if wait < time.Millisecond {
				wait = time.Millisecond
			}
		}
		rl.mu.Unlock()

		if isHead {
			timer := time.NewTimer(wait)

			select {
			case <-ctx.Done():
				timer.Stop()
				rl.cancel(elem)

				return ctx.Err()
			case <-timer.C:
			}

			continue
		}

		select {
		case <-ctx.Done():
			rl.cancel(elem)

			return ctx.Err()
		case <-turn:
		}
	}
}

// Tokens returns the number of tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	if rl == nil {
		return 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())

	return rl.tokens
}

// Capacity returns the bucket size.
func (rl *RateLimiter) Capacity() int {
	if rl == nil {
		return 0
	}

	return rl.capacity
}

// Waiting returns the number of callers queued for a token.
func (rl *RateLimiter) Waiting() int {
	if rl == nil {
		return 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	return rl.waiters.Len()
}

// refill must be called with mu held.
func (rl *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(rl.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	rl.lastRefill = now

	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > float64(rl.capacity) {
		rl.tokens = float64(rl.capacity)
	}
}

func (rl *RateLimiter) cancel(elem *list.Element) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.removeLocked(elem)
}

// removeLocked drops elem from the queue and wakes the new head.
func (rl *RateLimiter) removeLocked(elem *list.Element) {
	wasHead := rl.waiters.Front() == elem
	rl.waiters.Remove(elem)

	if !wasHead {
		return
	}

	if next := rl.waiters.Front(); next != nil {
		turn, _ := next.Value.(chan struct{})
		select {
		case turn <- struct{}{}:
		default:
		}
	}
}
