package search

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

// Throttled limits how often a provider is queried.
type Throttled struct {
	next    ports.SearchProvider
	limiter *rate.Limiter
}

var _ ports.SearchProvider = (*Throttled)(nil)

// NewThrottled allows perMinute calls with a burst of one. A non-positive rate disables throttling.
func NewThrottled(next ports.SearchProvider, perMinute int) *Throttled {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Name returns the wrapped provider name.
func (t *Throttled) Name() string {
	return t.next.Name()
}

// Search waits for a token, then delegates.
func (t *Throttled) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrSearch, err)
	}
	return t.next.Search(ctx, query)
}
