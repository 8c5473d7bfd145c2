package search

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// Index executes structured queries against the product index.
type Index interface {
	Search(ctx context.Context, q *query.Structured) (*result.Raw, error)
}
