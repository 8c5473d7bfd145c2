package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *query.Structured) (*result.Raw, error)
}

// Repo implements usecase/search.Index on top of an index driver.
type Repo struct {
	store  store
	driver string
}

// New creates a search repository. driver labels gateway metrics.
func New(s store, driver string) *Repo {
	return &Repo{store: s, driver: driver}
}

// Search executes q against the index.
func (r *Repo) Search(ctx context.Context, q *query.Structured) (*result.Raw, error) {
	start := time.Now()
	raw, err := r.store.Search(ctx, q)
	metrics.ObserveGateway(r.driver, "search", start, err)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", r.driver, err)
	}
	if raw == nil {
		raw = &result.Raw{}
	}
	return raw, nil
}
