package elastic

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/scoring"
)

// RenderSearch builds the Elasticsearch request body for a structured query.
// The category filter is emitted as post_filter so the terms aggregation sees
// the unfiltered candidate set.
func RenderSearch(q *query.Structured) map[string]any {
	body := map[string]any{
		"query": map[string]any{
			"function_score": map[string]any{
				"query":      renderBase(q.Base),
				"functions":  renderFunctions(q.Functions),
				"score_mode": string(combine(q.Combine)),
				"boost_mode": string(combine(q.Combine)),
			},
		},
	}

	if q.PostFilter != nil {
		body["post_filter"] = term(q.PostFilter.Field, q.PostFilter.Value)
	}

	if q.Aggregation.Name != "" {
		body["aggs"] = map[string]any{
			q.Aggregation.Name: map[string]any{
				"terms": map[string]any{
					"field": q.Aggregation.Field,
					"size":  q.Aggregation.Size,
					"order": map[string]any{"_count": "desc"},
				},
			},
		}
	}

	if len(q.Highlight.Fields) > 0 {
		fields := make(map[string]any, len(q.Highlight.Fields))
		for _, f := range q.Highlight.Fields {
			fields[f] = map[string]any{}
		}
		body["highlight"] = map[string]any{
			"fields":    fields,
			"pre_tags":  []string{q.Highlight.PreTag},
			"post_tags": []string{q.Highlight.PostTag},
		}
	}

	if q.Sort != nil {
		sort := []any{map[string]any{q.Sort.Field: map[string]any{"order": string(q.Sort.Order)}}}
		if q.Sort.ThenScore {
			sort = append(sort, map[string]any{"_score": map[string]any{"order": "desc"}})
		}
		body["sort"] = sort
		body["track_scores"] = true
	}

	if q.Size > 0 {
		body["size"] = q.Size
	}

	return body
}

// RenderMapping builds the create-index body for an index definition.
func RenderMapping(def *db.IndexDefinition) map[string]any {
	props := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		props[f.Name] = map[string]any{"type": f.Type.String()}
	}
	return map[string]any{"mappings": map[string]any{"properties": props}}
}

func combine(m query.CombineMode) query.CombineMode {
	if m == "" {
		return query.Sum
	}
	return m
}

func renderBase(b query.BaseClause) map[string]any {
	if b.IsMatchAll() {
		return map[string]any{"match_all": map[string]any{}}
	}
	fields := make([]string, 0, len(b.Fields()))
	for _, f := range b.Fields() {
		if f.Boost == 0 || f.Boost == 1 {
			fields = append(fields, f.Name)
			continue
		}
		fields = append(fields, f.Name+"^"+strconv.FormatFloat(f.Boost, 'g', -1, 64))
	}
	mm := map[string]any{
		"query":  b.Text(),
		"fields": fields,
	}
	if b.Fuzziness() != "" {
		mm["fuzziness"] = b.Fuzziness()
	}
	return map[string]any{"multi_match": mm}
}

func renderFunctions(fns []scoring.Function) []any {
	out := make([]any, 0, len(fns))
	for _, fn := range fns {
		out = append(out, renderFunction(fn))
	}
	return out
}

func renderFunction(fn scoring.Function) map[string]any {
	switch f := fn.(type) {
	case scoring.BoostIfEqual:
		return map[string]any{
			"filter": term(f.Field, f.Value),
			"weight": f.Weight,
		}
	case scoring.FieldValueBoost:
		out := map[string]any{
			"field_value_factor": map[string]any{
				"field":    f.Field,
				"factor":   1,
				"missing":  f.Missing,
				"modifier": modifier(f.Curve),
			},
			"weight": f.Weight,
		}
		// reciprocal of zero is rejected by the engine; such documents get no boost
		if f.Curve == scoring.Reciprocal {
			out["filter"] = map[string]any{"range": map[string]any{f.Field: map[string]any{"gt": 0}}}
		}
		return out
	case scoring.GeoProximityDecay:
		return map[string]any{
			"gauss": map[string]any{
				f.Field: map[string]any{
					"origin": map[string]any{"lat": f.Origin.Lat, "lon": f.Origin.Lon},
					"offset": meters(f.FullScoreRadius),
					"scale":  meters(f.HalfScoreRadius),
				},
			},
			"weight": f.Weight,
		}
	default:
		panic(fmt.Sprintf("elastic: unknown scoring function %T", fn))
	}
}

func modifier(c scoring.Curve) string {
	switch c {
	case scoring.Reciprocal:
		return "reciprocal"
	case scoring.LogPlusOne:
		return "log1p"
	default:
		return "none"
	}
}

func term(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

func meters(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "m"
}
