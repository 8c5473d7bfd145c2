package search

import (
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// Project maps gateway output into the response shape. Highlight fragments
// replace raw name and description when present; scores and hit order are kept
// as returned. Slices in the response are never nil.
func Project(raw *result.Raw) result.Response {
	resp := result.Response{
		Products: []result.ProductHit{},
		Facets:   []result.FacetBucket{},
	}
	if raw == nil {
		return resp
	}
	resp.Total = raw.Total

	resp.Products = make([]result.ProductHit, 0, len(raw.Hits))
	for _, h := range raw.Hits {
		fields := make(map[string]any, len(h.Source))
		for k, v := range h.Source {
			fields[k] = v
		}
		resp.Products = append(resp.Products, result.ProductHit{
			ID:                     h.ID,
			Fields:                 fields,
			Score:                  h.Score,
			HighlightedName:        highlighted(h, domain.FieldName),
			HighlightedDescription: highlighted(h, domain.FieldDescription),
		})
	}

	n := len(raw.Buckets)
	if n > FacetLimit {
		n = FacetLimit
	}
	resp.Facets = make([]result.FacetBucket, 0, n)
	for _, b := range raw.Buckets[:n] {
		resp.Facets = append(resp.Facets, result.FacetBucket{Name: b.Key, Count: b.DocCount})
	}

	return resp
}

// highlighted returns the first fragment for field, falling back to the raw value.
func highlighted(h result.RawHit, field string) string {
	if frags := h.Highlight[field]; len(frags) > 0 {
		return frags[0]
	}
	s, _ := h.Source[field].(string)
	return s
}
