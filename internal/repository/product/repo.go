package product

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// store is the consumer interface for product writes (ISP).
type store interface {
	Upsert(ctx context.Context, id string, doc map[string]any) (db.WriteResult, error)
	EnsureIndex(ctx context.Context, def *db.IndexDefinition) (bool, error)
	ResetIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements usecase/catalog.ProductIndex.
type Repo struct {
	store  store
	def    *db.IndexDefinition
	driver string
}

// New creates a product repository writing to the index described by def.
func New(s store, def *db.IndexDefinition, driver string) *Repo {
	return &Repo{store: s, def: def, driver: driver}
}

// Upsert indexes p by id. Returns true if the document was created.
func (r *Repo) Upsert(ctx context.Context, p *domain.Product) (bool, error) {
	doc, err := buildDocument(p)
	if err != nil {
		return false, err
	}

	start := time.Now()
	res, err := r.store.Upsert(ctx, p.ID, doc)
	metrics.ObserveGateway(r.driver, "upsert", start, err)
	if err != nil {
		return false, fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return res == db.Created, nil
}

// EnsureIndex creates the product index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	start := time.Now()
	created, err := r.store.EnsureIndex(ctx, r.def)
	metrics.ObserveGateway(r.driver, "ensure_index", start, err)
	if err != nil {
		return false, fmt.Errorf("ensure index %s: %w", r.def.Name, err)
	}
	return created, nil
}

// Reset drops every product and recreates the index.
func (r *Repo) Reset(ctx context.Context) error {
	start := time.Now()
	err := r.store.ResetIndex(ctx, r.def)
	metrics.ObserveGateway(r.driver, "reset_index", start, err)
	if err != nil {
		return fmt.Errorf("reset index %s: %w", r.def.Name, err)
	}
	return nil
}
