package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// IndexStore is the search index facade combining all index sub-interfaces.
type IndexStore interface {
	Pinger
	Searcher
	DocumentWriter
	IndexManager
	Close()
}

// QueueStore is the sync queue facade.
type QueueStore interface {
	Pinger
	Queue
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher executes structured queries.
type Searcher interface {
	Search(ctx context.Context, q *query.Structured) (*result.Raw, error)
}

// WriteResult reports whether an upsert created a new document or replaced one.
type WriteResult string

// Write results.
const (
	Created WriteResult = "created"
	Updated WriteResult = "updated"
)

// DocumentWriter stores documents by id. Writes are visible to the next search.
type DocumentWriter interface {
	Upsert(ctx context.Context, id string, doc map[string]any) (WriteResult, error)
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	// EnsureIndex creates the index when it is absent and reports whether it did.
	EnsureIndex(ctx context.Context, def *IndexDefinition) (bool, error)
	// ResetIndex drops the index if present and recreates it empty.
	ResetIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Queue is a FIFO of raw payloads keyed by list name.
type Queue interface {
	// Pop removes and returns the oldest payload; ErrQueueEmpty when none is left.
	Pop(ctx context.Context, key string) ([]byte, error)
	Push(ctx context.Context, key string, payloads ...[]byte) error
	Len(ctx context.Context, key string) (int64, error)
}

// WaitForPing polls p until it answers or timeout expires.
func WaitForPing(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for backend: %w", lastErr)
			}
			return fmt.Errorf("timeout waiting for backend: %w", ctx.Err())
		case <-ticker.C:
			if lastErr = p.Ping(ctx); lastErr == nil {
				return nil
			}
		}
	}
}
