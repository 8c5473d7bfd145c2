package search

import (
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/scoring"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/sortmode"
)

// Static query configuration.
const (
	HighlightPreTag  = "<b class='text-blue-600 font-bold'>"
	HighlightPostTag = "</b>"

	CategoriesAggregation = "categories"
	FacetLimit            = 50

	// GeoFullScoreRadius is the distance in meters within which the geo boost applies in full.
	GeoFullScoreRadius = 1000.0
	// GeoHalfScoreRadius is the distance beyond the full-score radius at which the geo boost halves.
	GeoHalfScoreRadius = 5000.0
)

// saleCategories are category filter values that select on-sale items instead of a literal category.
var saleCategories = map[string]struct{}{
	"sale": {},
	"SALE": {},
	"セール":  {},
}

var searchFields = []query.FieldBoost{
	{Name: domain.FieldName, Boost: 10},
	{Name: domain.FieldDescription, Boost: 1},
	{Name: domain.FieldDescriptionLong, Boost: 1},
	{Name: domain.FieldBrand, Boost: 1},
	{Name: domain.FieldTags, Boost: 1},
}

// Weights are the additive boost magnitudes applied on top of text relevance.
type Weights struct {
	Sale                 float64
	Priority             float64
	PreferredCategory    float64
	CheapPrice           float64
	PremiumPrice         float64
	Geo                  float64
	SensitivityThreshold float64
}

// DefaultWeights returns the production ranking weights.
func DefaultWeights() Weights {
	return Weights{
		Sale:                 1000,
		Priority:             1,
		PreferredCategory:    10000,
		CheapPrice:           100000,
		PremiumPrice:         100,
		Geo:                  5000,
		SensitivityThreshold: 50,
	}
}

// Validate checks that weights are usable and that personalization outranks a promotion.
func (w Weights) Validate() error {
	vals := map[string]float64{
		"sale":                  w.Sale,
		"priority":              w.Priority,
		"preferred_category":    w.PreferredCategory,
		"cheap_price":           w.CheapPrice,
		"premium_price":         w.PremiumPrice,
		"geo":                   w.Geo,
		"sensitivity_threshold": w.SensitivityThreshold,
	}
	for name, v := range vals {
		if v < 0 {
			return fmt.Errorf("ranking weight %s must not be negative", name)
		}
	}
	if w.PreferredCategory <= w.Sale {
		return fmt.Errorf("ranking weight preferred_category (%g) must exceed sale (%g)", w.PreferredCategory, w.Sale)
	}
	return nil
}

// IsSaleCategory reports whether a category filter value selects on-sale items.
func IsSaleCategory(category string) bool {
	_, ok := saleCategories[category]
	return ok
}

// Compose turns a search context into a structured query. It is pure: the same
// context and weights always yield an equal query.
func Compose(sc request.SearchContext, w Weights) query.Structured {
	q := query.Structured{
		Base:      baseClause(sc),
		Functions: scoringFunctions(sc, w),
		Combine:   query.Sum,
		Aggregation: query.Aggregation{
			Name:  CategoriesAggregation,
			Field: domain.FieldCategory,
			Size:  FacetLimit,
		},
		Highlight: query.Highlight{
			Fields:  []string{domain.FieldName, domain.FieldDescription},
			PreTag:  HighlightPreTag,
			PostTag: HighlightPostTag,
		},
	}

	if c := sc.CategoryFilter(); c != nil {
		if IsSaleCategory(*c) {
			q.PostFilter = &query.Filter{Field: domain.FieldIsSale, Value: true}
		} else {
			q.PostFilter = &query.Filter{Field: domain.FieldCategory, Value: *c}
		}
	}

	switch sc.Sort() {
	case sortmode.PriceAsc:
		q.Sort = &query.SortOverride{Field: domain.FieldPrice, Order: query.Asc, ThenScore: true}
	case sortmode.PriceDesc:
		q.Sort = &query.SortOverride{Field: domain.FieldPrice, Order: query.Desc, ThenScore: true}
	}

	return q
}

func baseClause(sc request.SearchContext) query.BaseClause {
	if !sc.HasText() {
		return query.MatchAll()
	}
	fields := make([]query.FieldBoost, len(searchFields))
	copy(fields, searchFields)
	return query.MultiMatch(*sc.QueryText(), fields, query.FuzzinessAuto)
}

// scoringFunctions builds boosts in a fixed order: sale, priority, preferred
// category, price sensitivity, geo.
func scoringFunctions(sc request.SearchContext, w Weights) []scoring.Function {
	fns := []scoring.Function{
		scoring.BoostIfEqual{Field: domain.FieldIsSale, Value: true, Weight: w.Sale},
		scoring.FieldValueBoost{Field: domain.FieldPriority, Weight: w.Priority, Missing: 0, Curve: scoring.Linear},
	}

	if pref := sc.PreferredCategory(); pref != nil {
		fns = append(fns, scoring.BoostIfEqual{Field: domain.FieldCategory, Value: *pref, Weight: w.PreferredCategory})
	}

	if s := sc.PrioritySensitivity(); s != nil {
		switch {
		case *s > w.SensitivityThreshold:
			fns = append(fns, scoring.FieldValueBoost{
				Field: domain.FieldPrice, Weight: w.CheapPrice, Missing: 0, Curve: scoring.Reciprocal,
			})
		case *s < -w.SensitivityThreshold:
			fns = append(fns, scoring.FieldValueBoost{
				Field: domain.FieldPrice, Weight: w.PremiumPrice, Missing: 0, Curve: scoring.LogPlusOne,
			})
		}
	}

	if g := sc.Geo(); g != nil {
		fns = append(fns, scoring.GeoProximityDecay{
			Field:           domain.FieldLocation,
			Origin:          *g,
			FullScoreRadius: GeoFullScoreRadius,
			HalfScoreRadius: GeoHalfScoreRadius,
			Weight:          w.Geo,
		})
	}

	return fns
}
