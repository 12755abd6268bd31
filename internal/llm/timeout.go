package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutProvider bounds every Generate call with a deadline and reports
// expiry as *ErrTimeout.
type TimeoutProvider struct {
	inner Provider
	after time.Duration
}

// WithTimeout wraps a Provider with a per-call deadline. A non-positive
// duration returns p unchanged.
func WithTimeout(p Provider, after time.Duration) Provider {
	if after <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, after: after}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	tctx, cancel := context.WithTimeout(ctx, t.after)
	defer cancel()

	resp, err := t.inner.Generate(tctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, &ErrTimeout{After: t.after, Err: err}
		}
		return nil, err
	}
	return resp, nil
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
