package blevestore

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/geo"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/scoring"
)

func newTestStore(t *testing.T, docs ...map[string]any) *Store {
	t.Helper()
	s := NewStore(Config{})
	t.Cleanup(s.Close)
	if _, err := s.EnsureIndex(context.Background(), db.ProductIndex("products")); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	for _, d := range docs {
		if _, err := s.Upsert(context.Background(), d["id"].(string), d); err != nil {
			t.Fatalf("Upsert %v: %v", d["id"], err)
		}
	}
	return s
}

func product(id, name, category string, price float64, sale bool, priority float64) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"description": name + " description",
		"category":    category,
		"price":       price,
		"isSale":      sale,
		"priority":    priority,
	}
}

func baseFunctions() []scoring.Function {
	return []scoring.Function{
		scoring.BoostIfEqual{Field: "isSale", Value: true, Weight: 1000},
		scoring.FieldValueBoost{Field: "priority", Weight: 1, Curve: scoring.Linear},
	}
}

func categoriesAgg() query.Aggregation {
	return query.Aggregation{Name: "categories", Field: "category", Size: 50}
}

func ids(t *testing.T, s *Store, q *query.Structured) []string {
	t.Helper()
	raw, err := s.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	out := make([]string, 0, len(raw.Hits))
	for _, h := range raw.Hits {
		out = append(out, h.ID)
	}
	return out
}

func TestSearch_BeforeEnsureIndex(t *testing.T) {
	s := NewStore(Config{})
	_, err := s.Search(context.Background(), &query.Structured{Base: query.MatchAll()})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected ping error before the index is open")
	}
}

func TestEnsureIndex(t *testing.T) {
	s := NewStore(Config{})
	defer s.Close()
	ctx := context.Background()

	created, err := s.EnsureIndex(ctx, db.ProductIndex("products"))
	if err != nil || !created {
		t.Fatalf("first EnsureIndex = %v, %v; want true, nil", created, err)
	}
	created, err = s.EnsureIndex(ctx, db.ProductIndex("products"))
	if err != nil || created {
		t.Fatalf("second EnsureIndex = %v, %v; want false, nil", created, err)
	}
	ok, _ := s.IndexExists(ctx, "products")
	if !ok {
		t.Error("IndexExists = false")
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestUpsert_CreatedThenUpdated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.Upsert(ctx, "1", product("1", "linen shirt", "tops", 3900, false, 0))
	if err != nil || res != db.Created {
		t.Fatalf("first Upsert = %q, %v", res, err)
	}
	res, err = s.Upsert(ctx, "1", product("1", "linen shirt v2", "tops", 2900, false, 0))
	if err != nil || res != db.Updated {
		t.Fatalf("second Upsert = %q, %v", res, err)
	}

	raw, err := s.Search(ctx, &query.Structured{Base: query.MatchAll()})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(raw.Hits) != 1 || raw.Hits[0].Source["price"] != float64(2900) {
		t.Errorf("hits = %+v", raw.Hits)
	}
}

func TestResetIndex(t *testing.T) {
	s := newTestStore(t, product("1", "shirt", "tops", 100, false, 0))
	if err := s.ResetIndex(context.Background(), db.ProductIndex("products")); err != nil {
		t.Fatalf("ResetIndex: %v", err)
	}
	if got := ids(t, s, &query.Structured{Base: query.MatchAll()}); len(got) != 0 {
		t.Errorf("expected empty index, got %v", got)
	}
}

func TestSearch_SaleRanksFirstAdditively(t *testing.T) {
	s := newTestStore(t,
		product("plain", "rain parka", "outer", 9000, false, 5),
		product("sale", "rain parka", "outer", 9000, true, 3),
	)

	raw, err := s.Search(context.Background(), &query.Structured{
		Base:      query.MultiMatch("parka", []query.FieldBoost{{Name: "name", Boost: 10}}, query.FuzzinessAuto),
		Functions: baseFunctions(),
		Combine:   query.Sum,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(raw.Hits) != 2 || raw.Hits[0].ID != "sale" {
		t.Fatalf("order = %+v, want sale first", raw.Hits)
	}
	// Equal text relevance: the gap is exactly sale boost plus the priority difference.
	gap := raw.Hits[0].Score - raw.Hits[1].Score
	if math.Abs(gap-(1000+3-5)) > 1e-6 {
		t.Errorf("score gap = %v, want 998", gap)
	}
}

func TestSearch_JapaneseQueryWithCategoryFilter(t *testing.T) {
	s := newTestStore(t,
		product("a", "撥水 パーカー", "アウター", 12800, false, 0),
		product("b", "撥水 パーカー", "アウター", 12800, true, 0),
		product("c", "リネン パンツ", "パンツ", 5800, false, 0),
	)

	raw, err := s.Search(context.Background(), &query.Structured{
		Base: query.MultiMatch("パーカー", []query.FieldBoost{
			{Name: "name", Boost: 10}, {Name: "description", Boost: 1},
		}, query.FuzzinessAuto),
		Functions:   baseFunctions(),
		Combine:     query.Sum,
		PostFilter:  &query.Filter{Field: "category", Value: "アウター"},
		Aggregation: categoriesAgg(),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(raw.Hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(raw.Hits))
	}
	if raw.Hits[0].ID != "b" {
		t.Errorf("first = %s, want sale item b", raw.Hits[0].ID)
	}
	if gap := raw.Hits[0].Score - raw.Hits[1].Score; math.Abs(gap-1000) > 1e-6 {
		t.Errorf("score gap = %v, want 1000", gap)
	}
}

func TestSearch_PostFilterDoesNotChangeFacets(t *testing.T) {
	s := newTestStore(t,
		product("1", "cotton tee", "tops", 3900, false, 0),
		product("2", "wool sweater", "tops", 4500, false, 0),
		product("3", "mountain parka", "outer", 12800, true, 0),
		product("4", "denim jacket", "outer", 8900, false, 0),
		product("5", "linen pants", "pants", 5800, false, 0),
	)

	unfiltered, err := s.Search(context.Background(), &query.Structured{
		Base: query.MatchAll(), Functions: baseFunctions(), Aggregation: categoriesAgg(),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	filtered, err := s.Search(context.Background(), &query.Structured{
		Base: query.MatchAll(), Functions: baseFunctions(), Aggregation: categoriesAgg(),
		PostFilter: &query.Filter{Field: "category", Value: "outer"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(filtered.Hits) != 2 {
		t.Errorf("filtered hits = %d, want 2", len(filtered.Hits))
	}
	for _, h := range filtered.Hits {
		if h.Source["category"] != "outer" {
			t.Errorf("hit %s has category %v", h.ID, h.Source["category"])
		}
	}
	if len(unfiltered.Buckets) != 3 || len(filtered.Buckets) != 3 {
		t.Fatalf("buckets = %v / %v", unfiltered.Buckets, filtered.Buckets)
	}
	for i := range unfiltered.Buckets {
		if unfiltered.Buckets[i] != filtered.Buckets[i] {
			t.Errorf("bucket %d changed: %+v -> %+v", i, unfiltered.Buckets[i], filtered.Buckets[i])
		}
	}
	if unfiltered.Buckets[2].Key != "pants" || unfiltered.Buckets[2].DocCount != 1 {
		t.Errorf("last bucket = %+v, want pants:1", unfiltered.Buckets[2])
	}
}

func TestSearch_SaleFilter(t *testing.T) {
	s := newTestStore(t,
		product("1", "tee", "tops", 3900, false, 0),
		product("2", "parka", "outer", 12800, true, 0),
	)
	got := ids(t, s, &query.Structured{Base: query.MatchAll(), PostFilter: &query.Filter{Field: "isSale", Value: true}})
	if len(got) != 1 || got[0] != "2" {
		t.Errorf("ids = %v, want [2]", got)
	}
}

func TestSearch_PriceSensitivity(t *testing.T) {
	s := newTestStore(t,
		product("cheap", "tee", "tops", 1000, false, 0),
		product("pricey", "tee", "tops", 9000, false, 0),
	)
	cheapFirst := ids(t, s, &query.Structured{
		Base:      query.MatchAll(),
		Functions: append(baseFunctions(), scoring.FieldValueBoost{Field: "price", Weight: 100000, Curve: scoring.Reciprocal}),
	})
	if cheapFirst[0] != "cheap" {
		t.Errorf("reciprocal order = %v, want cheap first", cheapFirst)
	}
	premiumFirst := ids(t, s, &query.Structured{
		Base:      query.MatchAll(),
		Functions: append(baseFunctions(), scoring.FieldValueBoost{Field: "price", Weight: 100, Curve: scoring.LogPlusOne}),
	})
	if premiumFirst[0] != "pricey" {
		t.Errorf("log order = %v, want pricey first", premiumFirst)
	}
}

func TestSearch_GeoProximity(t *testing.T) {
	near := product("near", "tee", "tops", 1000, false, 0)
	near["location"] = map[string]any{"lat": 35.681, "lon": 139.767}
	far := product("far", "tee", "tops", 1000, false, 0)
	far["location"] = map[string]any{"lat": 35.75, "lon": 139.767}
	s := newTestStore(t, far, near)

	got := ids(t, s, &query.Structured{
		Base: query.MatchAll(),
		Functions: []scoring.Function{scoring.GeoProximityDecay{
			Field: "location", Origin: geo.Point{Lat: 35.681, Lon: 139.767},
			FullScoreRadius: 1000, HalfScoreRadius: 5000, Weight: 5000,
		}},
	})
	if got[0] != "near" {
		t.Errorf("order = %v, want near first", got)
	}
}

func TestSearch_SortOverride(t *testing.T) {
	noPrice := product("none", "tee", "tops", 0, true, 0)
	delete(noPrice, "price")
	s := newTestStore(t,
		product("mid", "tee", "tops", 5000, false, 0),
		noPrice,
		product("low", "tee", "tops", 1000, false, 0),
		product("high", "tee", "tops", 9000, false, 0),
	)

	asc := ids(t, s, &query.Structured{
		Base: query.MatchAll(), Functions: baseFunctions(),
		Sort: &query.SortOverride{Field: "price", Order: query.Asc, ThenScore: true},
	})
	if strings.Join(asc, ",") != "low,mid,high,none" {
		t.Errorf("asc = %v", asc)
	}
	desc := ids(t, s, &query.Structured{
		Base: query.MatchAll(), Functions: baseFunctions(),
		Sort: &query.SortOverride{Field: "price", Order: query.Desc, ThenScore: true},
	})
	if strings.Join(desc, ",") != "high,mid,low,none" {
		t.Errorf("desc = %v", desc)
	}
}

func TestSearch_HighlightTags(t *testing.T) {
	s := newTestStore(t, product("1", "waterproof parka", "outer", 12800, false, 0))

	raw, err := s.Search(context.Background(), &query.Structured{
		Base:      query.MultiMatch("parka", []query.FieldBoost{{Name: "name", Boost: 10}}, query.FuzzinessAuto),
		Highlight: query.Highlight{Fields: []string{"name", "description"}, PreTag: "<b class='x'>", PostTag: "</b>"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	frags := raw.Hits[0].Highlight["name"]
	if len(frags) == 0 {
		t.Fatal("expected name fragment")
	}
	if !strings.Contains(frags[0], "<b class='x'>parka</b>") {
		t.Errorf("fragment = %q", frags[0])
	}
	if strings.Contains(frags[0], "<mark>") {
		t.Errorf("fragment still carries default tags: %q", frags[0])
	}
}

func TestSearch_FuzzyMatch(t *testing.T) {
	s := newTestStore(t,
		product("1", "sweater", "tops", 4500, false, 0),
		product("2", "jacket", "outer", 8900, false, 0),
	)
	got := ids(t, s, &query.Structured{
		Base: query.MultiMatch("sweatr", []query.FieldBoost{{Name: "name", Boost: 10}}, query.FuzzinessAuto),
	})
	if len(got) != 1 || got[0] != "1" {
		t.Errorf("ids = %v, want [1]", got)
	}
}

func TestSearch_SizeAndTotal(t *testing.T) {
	s := newTestStore(t,
		product("1", "a", "tops", 1, false, 3),
		product("2", "b", "tops", 2, false, 2),
		product("3", "c", "tops", 3, false, 1),
	)
	raw, err := s.Search(context.Background(), &query.Structured{
		Base: query.MatchAll(), Functions: baseFunctions(), Size: 2,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if raw.Total != 3 || len(raw.Hits) != 2 {
		t.Errorf("Total=%d hits=%d, want 3/2", raw.Total, len(raw.Hits))
	}
	if raw.Hits[0].ID != "1" {
		t.Errorf("first = %s, want highest priority", raw.Hits[0].ID)
	}
}

func TestAutoFuzziness(t *testing.T) {
	tests := map[string]int{
		"ab":      0,
		"abc":     1,
		"abcde":   1,
		"abcdef":  2,
		"パーカー":    0,
		"denim99": 2,
	}
	for term, want := range tests {
		if got := autoFuzziness(term); got != want {
			t.Errorf("autoFuzziness(%q) = %d, want %d", term, got, want)
		}
	}
}
