package vision

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/trendly/backend/internal/domain"
)

// Limits bounds how hard a generator drives its model API
type Limits struct {
	Timeout           time.Duration
	MaxConcurrent     int
	RequestsPerMinute int
}

// gate bounds concurrent and per-minute model calls
type gate struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	timeout time.Duration
}

func newGate(limits Limits) *gate {
	maxConcurrent := limits.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	limit := rate.Inf
	if limits.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(limits.RequestsPerMinute))
	}

	return &gate{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		limiter: rate.NewLimiter(limit, maxConcurrent),
		timeout: limits.Timeout,
	}
}

// enter waits for a free slot and a rate token. The returned context carries
// the per-call timeout; call done when the model call finishes.
func (g *gate) enter(ctx context.Context) (context.Context, func(), error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to acquire semaphore: %v", domain.ErrVisionUnavailable, err)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		g.sem.Release(1)
		return nil, nil, fmt.Errorf("%w: rate limiter error: %v", domain.ErrVisionUnavailable, err)
	}

	cancel := context.CancelFunc(func() {})
	if g.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
	}

	return ctx, func() {
		cancel()
		g.sem.Release(1)
	}, nil
}
