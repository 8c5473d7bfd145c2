package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    map[string]any      `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key      any   `json:"key"`
			DocCount int64 `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

// Search executes a structured query. Hit order is the engine's.
func (s *Store) Search(ctx context.Context, q *query.Structured) (*result.Raw, error) {
	body, err := json.Marshal(RenderSearch(q))
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("encode query: %w", err)}
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
		s.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, transportError(db.OpSearch, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError(db.OpSearch, res)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	raw := &result.Raw{
		Total: sr.Hits.Total.Value,
		Hits:  make([]result.RawHit, 0, len(sr.Hits.Hits)),
	}
	for _, h := range sr.Hits.Hits {
		var score float64
		if h.Score != nil {
			score = *h.Score
		}
		raw.Hits = append(raw.Hits, result.RawHit{
			ID:        h.ID,
			Source:    h.Source,
			Score:     score,
			Highlight: h.Highlight,
		})
	}

	if agg, ok := sr.Aggregations[q.Aggregation.Name]; ok && q.Aggregation.Name != "" {
		raw.Buckets = make([]result.RawBucket, 0, len(agg.Buckets))
		for _, b := range agg.Buckets {
			raw.Buckets = append(raw.Buckets, result.RawBucket{Key: fmt.Sprint(b.Key), DocCount: b.DocCount})
		}
	}

	return raw, nil
}
