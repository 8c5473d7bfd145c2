package blevestore

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	bquery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/scoring"
)

// bleve's html highlighter wraps matches in <mark>.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

type scoredHit struct {
	hit   result.RawHit
	order int
}

// Search executes a structured query in three stages: bleve retrieves and
// scores every candidate (with facets over that set), function scores are
// added in process, then the post-filter, sort and size are applied.
func (s *Store) Search(ctx context.Context, q *query.Structured) (*result.Raw, error) {
	idx, err := s.current()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	count, err := idx.DocCount()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: domain.NewIndexError("", err.Error())}
	}

	req := bleve.NewSearchRequestOptions(baseQuery(q.Base), int(count), 0, false)
	if len(q.Highlight.Fields) > 0 {
		req.Highlight = bleve.NewHighlightWithStyle("html")
		for _, f := range q.Highlight.Fields {
			req.Highlight.AddField(f)
		}
	}
	if q.Aggregation.Name != "" {
		req.AddFacet(q.Aggregation.Name, bleve.NewFacetRequest(q.Aggregation.Field, q.Aggregation.Size))
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: domain.NewIndexError("", err.Error())}
	}

	tags := strings.NewReplacer(markOpen, q.Highlight.PreTag, markClose, q.Highlight.PostTag)

	hits := make([]scoredHit, 0, len(res.Hits))
	for i, h := range res.Hits {
		src, err := loadSource(idx, h.ID)
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: domain.NewIndexError("", err.Error())}
		}
		if q.PostFilter != nil && !matches(q.PostFilter, src) {
			continue
		}
		var hl map[string][]string
		if len(h.Fragments) > 0 {
			hl = make(map[string][]string, len(h.Fragments))
			for field, frags := range h.Fragments {
				out := make([]string, len(frags))
				for j, f := range frags {
					out[j] = tags.Replace(f)
				}
				hl[field] = out
			}
		}
		hits = append(hits, scoredHit{
			hit: result.RawHit{
				ID:        h.ID,
				Source:    src,
				Score:     combine(q.Combine, h.Score, q.Functions, src),
				Highlight: hl,
			},
			order: i,
		})
	}

	sortHits(hits, q.Sort)

	raw := &result.Raw{Total: int64(len(hits))}
	if q.Size > 0 && len(hits) > q.Size {
		hits = hits[:q.Size]
	}
	raw.Hits = make([]result.RawHit, 0, len(hits))
	for _, h := range hits {
		raw.Hits = append(raw.Hits, h.hit)
	}

	if q.Aggregation.Name != "" {
		raw.Buckets = []result.RawBucket{}
		if fr, ok := res.Facets[q.Aggregation.Name]; ok && fr.Terms != nil {
			for _, t := range fr.Terms.Terms() {
				raw.Buckets = append(raw.Buckets, result.RawBucket{Key: t.Term, DocCount: int64(t.Count)})
			}
		}
	}

	return raw, nil
}

// baseQuery builds the relevance query. Each whitespace-separated term is
// matched against every field with its own length-scaled fuzziness.
func baseQuery(b query.BaseClause) bquery.Query {
	if b.IsMatchAll() {
		return bleve.NewMatchAllQuery()
	}
	terms := strings.Fields(b.Text())
	if len(terms) == 0 {
		return bleve.NewMatchAllQuery()
	}
	var qs []bquery.Query
	for _, term := range terms {
		fuzz := 0
		if b.Fuzziness() == query.FuzzinessAuto {
			fuzz = autoFuzziness(term)
		}
		for _, f := range b.Fields() {
			mq := bleve.NewMatchQuery(term)
			mq.SetField(f.Name)
			if f.Boost > 0 {
				mq.SetBoost(f.Boost)
			}
			mq.SetFuzziness(fuzz)
			qs = append(qs, mq)
		}
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// autoFuzziness allows no edits up to two characters, one up to five and two beyond.
// CJK terms are matched as bigrams and get no edits.
func autoFuzziness(term string) int {
	for _, r := range term {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return 0
		}
	}
	switch n := utf8.RuneCountInString(term); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// combine merges the base score with function scores. In sum mode every
// function adds to the base; in multiply mode the base is scaled by the
// summed functions, or left as is when no function contributes.
func combine(mode query.CombineMode, base float64, fns []scoring.Function, src map[string]any) float64 {
	var total float64
	for _, fn := range fns {
		total += scoring.Evaluate(fn, src)
	}
	if mode == query.Multiply {
		if total == 0 {
			return base
		}
		return base * total
	}
	return base + total
}

func matches(f *query.Filter, src map[string]any) bool {
	return scoring.Evaluate(scoring.BoostIfEqual{Field: f.Field, Value: f.Value, Weight: 1}, src) > 0
}

// sortHits orders by score, or by the override field with missing values last.
// Ties keep retrieval order.
func sortHits(hits []scoredHit, o *query.SortOverride) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if o != nil {
			av, aok := numeric(a.hit.Source[o.Field])
			bv, bok := numeric(b.hit.Source[o.Field])
			switch {
			case aok && !bok:
				return true
			case !aok && bok:
				return false
			case aok && bok && av != bv:
				if o.Order == query.Desc {
					return av > bv
				}
				return av < bv
			}
			if !o.ThenScore {
				return a.order < b.order
			}
		}
		if a.hit.Score != b.hit.Score {
			return a.hit.Score > b.hit.Score
		}
		return a.order < b.order
	})
}

func numeric(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
