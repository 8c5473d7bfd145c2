package search

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// DefaultPageSize is the number of hits requested when none is configured.
const DefaultPageSize = 20

// Service composes, executes and projects product searches.
type Service struct {
	index    Index
	weights  Weights
	pageSize int
	tracer   trace.Tracer
}

// New creates a search service. A non-positive pageSize uses DefaultPageSize.
func New(index Index, weights Weights, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		index:    index,
		weights:  weights,
		pageSize: pageSize,
		tracer:   otel.Tracer("github.com/kailas-cloud/shopsearch/internal/usecase/search"),
	}
}

// Search runs one product search for the given context.
func (s *Service) Search(ctx context.Context, sc request.SearchContext) (result.Response, error) {
	ctx, span := s.tracer.Start(ctx, "search.Search")
	defer span.End()

	q := Compose(sc, s.weights)
	q.Size = s.pageSize

	personalized := sc.PreferredCategory() != nil || sc.PrioritySensitivity() != nil
	span.SetAttributes(
		attribute.Bool("search.has_text", sc.HasText()),
		attribute.Bool("search.post_filter", q.PostFilter != nil),
		attribute.Bool("search.personalized", personalized),
		attribute.String("search.sort", string(sc.Sort())),
		attribute.Int("search.functions", len(q.Functions)),
	)
	for _, fn := range q.Functions {
		metrics.ScoringFunctionsTotal.WithLabelValues(string(fn.Kind())).Inc()
	}

	raw, err := s.index.Search(ctx, &q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "index search failed")
		metrics.SearchRequestsTotal.WithLabelValues(string(sc.Sort()), strconv.FormatBool(personalized), "error").Inc()
		return result.Response{}, fmt.Errorf("search index: %w", err)
	}

	resp := Project(raw)
	metrics.SearchRequestsTotal.WithLabelValues(string(sc.Sort()), strconv.FormatBool(personalized), "ok").Inc()
	metrics.SearchResultSize.Observe(float64(len(resp.Products)))
	span.SetAttributes(attribute.Int("search.hits", len(resp.Products)))

	return resp, nil
}
