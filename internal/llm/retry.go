package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/learnpath/internal/logger"
)

// RetryProvider retries transient provider failures with exponential
// backoff and ±20% jitter. A malformed reply earns exactly one retry.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *logger.Logger
}

type RetryOption func(*RetryProvider)

// RetryLogger reports each scheduled retry at warn level.
func RetryLogger(log *logger.Logger) RetryOption {
	return func(r *RetryProvider) {
		if log != nil {
			r.log = log
		}
	}
}

func WithRetry(p Provider, cfg RetryConfig, opts ...RetryOption) Provider {
	r := &RetryProvider{inner: p, config: cfg, log: logger.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		lastErr     error
		invalidUsed bool
	)
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if invalidUsed {
				return nil, err
			}
			invalidUsed = true
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		wait := r.backoff(attempt, err)
		r.log.Warn("llm call failed, retrying",
			"model", r.inner.ModelID(), "attempt", attempt, "wait", wait, "error", err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

type retryClass int

const (
	retryAlways retryClass = iota
	retryOnce
	retryNever
)

// classify sorts failures into final, retry-once (malformed replies) and
// transient. Unrecognized errors count as transient.
func classify(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}
	var (
		timeout *ErrTimeout
		unauth  *ErrUnauthorized
		maxTok  *ErrMaxTokensExceeded
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &timeout), errors.As(err, &unauth), errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	}
	return retryAlways
}

// backoff returns the wait before the attempt after the given one. A
// rate-limit Retry-After hint takes precedence.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	wait = min(wait, float64(r.config.MaxWait))
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(max(wait, 0))
}
