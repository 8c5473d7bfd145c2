package catalog

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// ProductIndex writes products to the search index.
type ProductIndex interface {
	Upsert(ctx context.Context, p *domain.Product) (created bool, err error)
	EnsureIndex(ctx context.Context) (created bool, err error)
	Reset(ctx context.Context) error
}

// SyncQueue yields pending product payloads. ok is false once drained.
type SyncQueue interface {
	Next(ctx context.Context) (payload []byte, ok bool, err error)
}
