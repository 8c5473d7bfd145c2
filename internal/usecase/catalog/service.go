package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// WriteResult tells whether an upsert created or replaced a product.
type WriteResult string

// Write results.
const (
	Created WriteResult = "created"
	Updated WriteResult = "updated"
)

// Sync sources used as metric labels.
const (
	sourceReindex = "reindex"
	sourceQueue   = "queue"
	sourceSeed    = "seed"
)

// Service keeps the search index in step with the catalog.
type Service struct {
	index  ProductIndex
	queue  SyncQueue
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// New creates a catalog service. queue can be nil when no sync queue is configured.
func New(index ProductIndex, queue SyncQueue, logger *zap.Logger) *Service {
	return &Service{
		index:  index,
		queue:  queue,
		logger: logger,
		tracer: otel.Tracer("github.com/kailas-cloud/shopsearch/internal/usecase/catalog"),
		now:    time.Now,
	}
}

// WithClock overrides the clock used to stamp UpdatedAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upsert validates p, stamps UpdatedAt and indexes it by id.
func (s *Service) Upsert(ctx context.Context, p *domain.Product) (WriteResult, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Upsert", trace.WithAttributes(attribute.String("product.id", p.ID)))
	defer span.End()

	res, err := s.upsert(ctx, p, sourceReindex)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return "", err
	}
	return res, nil
}

func (s *Service) upsert(ctx context.Context, p *domain.Product, source string) (WriteResult, error) {
	if err := p.Validate(); err != nil {
		metrics.SyncedProductsTotal.WithLabelValues(source, "skipped").Inc()
		return "", err
	}

	ts := s.now().UTC()
	p.UpdatedAt = &ts

	created, err := s.index.Upsert(ctx, p)
	if err != nil {
		metrics.SyncedProductsTotal.WithLabelValues(source, "failed").Inc()
		return "", fmt.Errorf("index product %s: %w", p.ID, err)
	}
	metrics.SyncedProductsTotal.WithLabelValues(source, "indexed").Inc()

	if created {
		return Created, nil
	}
	return Updated, nil
}

// Drain pops queued payloads until the queue is empty and indexes each one.
// Payloads that do not decode or validate are logged and skipped. An index
// or queue failure stops the drain; the names synced so far are returned with it.
func (s *Service) Drain(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Drain")
	defer span.End()

	synced := []string{}
	if s.queue == nil {
		return synced, fmt.Errorf("sync queue not configured: %w", domain.ErrQueueUnavailable)
	}

	for {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		payload, ok, err := s.queue.Next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "queue read failed")
			return synced, fmt.Errorf("drain: %w", err)
		}
		if !ok {
			break
		}

		var p domain.Product
		if err := json.Unmarshal(payload, &p); err != nil {
			s.logger.Warn("Skipping malformed sync payload",
				zap.Int("bytes", len(payload)),
				zap.Error(err),
			)
			metrics.SyncedProductsTotal.WithLabelValues(sourceQueue, "skipped").Inc()
			continue
		}

		if err := p.Validate(); err != nil {
			s.logger.Warn("Skipping invalid product from sync queue",
				zap.String("product_id", p.ID),
				zap.Error(err),
			)
			metrics.SyncedProductsTotal.WithLabelValues(sourceQueue, "skipped").Inc()
			continue
		}

		if _, err := s.upsert(ctx, &p, sourceQueue); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "index write failed")
			return synced, fmt.Errorf("drain: %w", err)
		}
		synced = append(synced, p.Name)
	}

	span.SetAttributes(attribute.Int("catalog.synced", len(synced)))
	s.logger.Info("Sync queue drained", zap.Int("synced", len(synced)))
	return synced, nil
}

// Seed drops the index, recreates it and loads the fixed demo catalog.
func (s *Service) Seed(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Seed")
	defer span.End()

	if err := s.index.Reset(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reset failed")
		return 0, fmt.Errorf("seed: %w", err)
	}

	products := domain.SeedProducts()
	for i := range products {
		if _, err := s.upsert(ctx, &products[i], sourceSeed); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "seed write failed")
			return i, fmt.Errorf("seed: %w", err)
		}
	}

	s.logger.Info("Index seeded", zap.Int("products", len(products)))
	return len(products), nil
}

// EnsureIndex creates the product index with its mapping when it is missing.
func (s *Service) EnsureIndex(ctx context.Context) error {
	created, err := s.index.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	if created {
		s.logger.Info("Product index created")
	}
	return nil
}
