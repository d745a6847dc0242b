package figma

import (
	"math/rand/v2"
	"time"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// RetryPolicy decides whether and when a failed attempt is re-tried.
type RetryPolicy struct {
	// MaxAttempts is the retry ceiling: attempt indexes 0..MaxAttempts-1 may retry.
	MaxAttempts int
	// BaseDelay is doubled on every attempt.
	BaseDelay time.Duration
	// MaxDelay caps the exponential part of the delay.
	MaxDelay time.Duration
	// MaxJitter bounds the random delay added on top of the backoff.
	MaxJitter time.Duration
}

// RetryDecision is the outcome of RetryPolicy.ShouldRetry.
type RetryDecision struct {
	Retry bool
	Delay time.Duration
}

// DefaultRetryPolicy returns the default retry configuration.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: constants.DefaultMaxRetries,
		BaseDelay:   constants.DefaultRetryBaseDelay,
		MaxDelay:    constants.DefaultRetryMaxDelay,
		MaxJitter:   constants.DefaultRetryJitter,
	}
}

// Retryable reports whether failures of kind are ever retried.
func Retryable(kind ErrorKind) bool {
	switch kind {
	case KindRateLimited, KindNetwork, KindTimeout, KindServerError:
		return true
	case KindAuthentication, KindAuthorization, KindNotFound, KindValidation, KindGenericHTTP:
		return false
	default:
		return false
	}
}

// ShouldRetry decides on a retry for err observed at attempt (0-based).
func (p *RetryPolicy) ShouldRetry(err *Error, attempt int) RetryDecision {
	if p == nil || err == nil || !Retryable(err.Kind) || attempt >= p.MaxAttempts {
		return RetryDecision{}
	}

	return RetryDecision{Retry: true, Delay: p.Delay(err, attempt)}
}

// Delay returns the wait before the attempt following attempt. A Retry-After
// hint on a rate-limited error is used verbatim, without jitter.
func (p *RetryPolicy) Delay(err *Error, attempt int) time.Duration {
	if err != nil && err.Kind == KindRateLimited && err.RetryAfter != nil {
		return *err.RetryAfter
	}

	return p.backoff(attempt) + p.jitter()
}

func (p *RetryPolicy) backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// 2^62 nanoseconds already exceeds any sane MaxDelay.
	if attempt > 62 {
		attempt = 62
	}

	delay := p.BaseDelay * time.Duration(int64(1)<<attempt)
	if delay < 0 || delay/time.Duration(int64(1)<<attempt) != p.BaseDelay {
		delay = p.MaxDelay
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	return delay
}

func (p *RetryPolicy) jitter() time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}

	return time.Duration(rand.Int64N(int64(p.MaxJitter)))
}
