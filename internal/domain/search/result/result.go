package result

// RawHit is a single hit as returned by an index gateway.
type RawHit struct {
	ID        string
	Source    map[string]any
	Score     float64
	Highlight map[string][]string
}

// RawBucket is a single aggregation bucket as returned by an index gateway.
type RawBucket struct {
	Key      string
	DocCount int64
}

// Raw is gateway output. Buckets is nil when the index returned no aggregation.
type Raw struct {
	Hits    []RawHit
	Buckets []RawBucket
	Total   int64
}

// ProductHit is a projected hit.
type ProductHit struct {
	ID                     string
	Fields                 map[string]any
	Score                  float64
	HighlightedName        string
	HighlightedDescription string
}

// FacetBucket is a category facet with its document count.
type FacetBucket struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Response is the projected search result.
type Response struct {
	Products []ProductHit
	Facets   []FacetBucket
	Total    int64
}

// Document flattens a hit into the wire shape: raw fields plus id and _score,
// with name and description replaced by their highlighted forms.
func (h ProductHit) Document() map[string]any {
	doc := make(map[string]any, len(h.Fields)+2)
	for k, v := range h.Fields {
		doc[k] = v
	}
	doc["id"] = h.ID
	doc["_score"] = h.Score
	doc["name"] = h.HighlightedName
	doc["description"] = h.HighlightedDescription
	return doc
}
