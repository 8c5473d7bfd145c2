// Package syncqueue reads and writes the catalog sync queue, a list of
// JSON product payloads pushed by upstream systems.
package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// DefaultKey is the list upstream producers push to.
const DefaultKey = "product-sync-queue"

// store is the consumer interface for queue operations (ISP).
type store interface {
	Pop(ctx context.Context, key string) ([]byte, error)
	Push(ctx context.Context, key string, payloads ...[]byte) error
	Len(ctx context.Context, key string) (int64, error)
}

// Repo implements usecase/catalog.SyncQueue.
type Repo struct {
	store store
	key   string
}

// New creates a queue repository over the list at key. An empty key uses DefaultKey.
func New(s store, key string) *Repo {
	if key == "" {
		key = DefaultKey
	}
	return &Repo{store: s, key: key}
}

// Key returns the list name.
func (r *Repo) Key() string { return r.key }

// Next pops the oldest payload. ok is false once the queue is empty.
func (r *Repo) Next(ctx context.Context) (payload []byte, ok bool, err error) {
	start := time.Now()
	payload, err = r.store.Pop(ctx, r.key)
	if errors.Is(err, db.ErrQueueEmpty) {
		metrics.ObserveGateway("redis", "pop", start, nil)
		return nil, false, nil
	}
	metrics.ObserveGateway("redis", "pop", start, err)
	if err != nil {
		return nil, false, fmt.Errorf("pop %s: %w: %w", r.key, domain.ErrQueueUnavailable, err)
	}
	return payload, true, nil
}

// Enqueue pushes payloads in order; the first is popped first.
func (r *Repo) Enqueue(ctx context.Context, payloads ...[]byte) error {
	if err := r.store.Push(ctx, r.key, payloads...); err != nil {
		return fmt.Errorf("push %s: %w: %w", r.key, domain.ErrQueueUnavailable, err)
	}
	return nil
}

// Pending returns the number of queued payloads.
func (r *Repo) Pending(ctx context.Context) (int64, error) {
	n, err := r.store.Len(ctx, r.key)
	if err != nil {
		return 0, fmt.Errorf("len %s: %w: %w", r.key, domain.ErrQueueUnavailable, err)
	}
	return n, nil
}
