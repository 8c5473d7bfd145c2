package request

import (
	"math"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain/geo"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/sortmode"
)

// MaxQueryLength is the maximum accepted query text length in bytes; longer text is truncated.
const MaxQueryLength = 4096

// Params are the raw, possibly absent inputs a SearchContext is built from.
type Params struct {
	Query               *string
	Category            *string
	Lat                 *float64
	Lon                 *float64
	PreferredCategory   *string
	PrioritySensitivity *float64
	Sort                string
}

// SearchContext is the normalized, immutable input to query composition.
type SearchContext struct {
	queryText           *string
	categoryFilter      *string
	geo                 *geo.Point
	preferredCategory   *string
	prioritySensitivity *float64
	sort                sortmode.Mode
}

// New normalizes raw parameters into a SearchContext.
// Blank strings become absent, geo requires both coordinates within bounds,
// non-finite sensitivity is dropped and unknown sort values fall back to relevance.
func New(p Params) SearchContext {
	sc := SearchContext{
		queryText:         normalizeText(p.Query),
		categoryFilter:    normalizeText(p.Category),
		preferredCategory: normalizeText(p.PreferredCategory),
		sort:              sortmode.Parse(p.Sort),
	}
	if sc.queryText != nil && len(*sc.queryText) > MaxQueryLength {
		q := truncate(*sc.queryText, MaxQueryLength)
		sc.queryText = &q
	}
	if p.Lat != nil && p.Lon != nil {
		pt := geo.Point{Lat: *p.Lat, Lon: *p.Lon}
		if finite(pt.Lat) && finite(pt.Lon) && pt.Valid() {
			sc.geo = &pt
		}
	}
	if p.PrioritySensitivity != nil && finite(*p.PrioritySensitivity) {
		v := *p.PrioritySensitivity
		sc.prioritySensitivity = &v
	}
	return sc
}

// QueryText returns the free-text query, nil when absent.
func (c SearchContext) QueryText() *string { return c.queryText }

// CategoryFilter returns the category to post-filter by, nil when absent.
func (c SearchContext) CategoryFilter() *string { return c.categoryFilter }

// Geo returns the visitor location, nil when absent.
func (c SearchContext) Geo() *geo.Point { return c.geo }

// PreferredCategory returns the visitor's affinity category, nil when absent.
func (c SearchContext) PreferredCategory() *string { return c.preferredCategory }

// PrioritySensitivity returns the externally inferred price-sensitivity score, nil when absent.
func (c SearchContext) PrioritySensitivity() *float64 { return c.prioritySensitivity }

// Sort returns the requested ordering.
func (c SearchContext) Sort() sortmode.Mode { return c.sort }

// HasText reports whether a non-empty query text is present.
func (c SearchContext) HasText() bool { return c.queryText != nil }

func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
