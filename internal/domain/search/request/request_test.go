package request

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/sortmode"
)

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNew_Empty(t *testing.T) {
	c := New(Params{})
	if c.QueryText() != nil || c.CategoryFilter() != nil || c.PreferredCategory() != nil {
		t.Error("expected absent strings")
	}
	if c.Geo() != nil {
		t.Error("expected nil geo")
	}
	if c.PrioritySensitivity() != nil {
		t.Error("expected nil sensitivity")
	}
	if c.Sort() != sortmode.Relevance {
		t.Errorf("Sort() = %q, want relevance", c.Sort())
	}
	if c.HasText() {
		t.Error("HasText() = true")
	}
}

func TestNew_BlankStringsAreAbsent(t *testing.T) {
	c := New(Params{Query: strPtr("   "), Category: strPtr(""), PreferredCategory: strPtr("\t")})
	if c.QueryText() != nil {
		t.Errorf("QueryText() = %q", *c.QueryText())
	}
	if c.CategoryFilter() != nil {
		t.Error("CategoryFilter should be nil")
	}
	if c.PreferredCategory() != nil {
		t.Error("PreferredCategory should be nil")
	}
}

func TestNew_TrimsText(t *testing.T) {
	c := New(Params{Query: strPtr("  パーカー "), Category: strPtr(" アウター")})
	if got := *c.QueryText(); got != "パーカー" {
		t.Errorf("QueryText() = %q", got)
	}
	if got := *c.CategoryFilter(); got != "アウター" {
		t.Errorf("CategoryFilter() = %q", got)
	}
}

func TestNew_Geo(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon *float64
		want     bool
	}{
		{"both", floatPtr(35.6), floatPtr(139.7), true},
		{"lat only", floatPtr(35.6), nil, false},
		{"lon only", nil, floatPtr(139.7), false},
		{"out of range", floatPtr(120), floatPtr(10), false},
		{"nan", floatPtr(math.NaN()), floatPtr(10), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New(Params{Lat: tc.lat, Lon: tc.lon})
			if (c.Geo() != nil) != tc.want {
				t.Errorf("Geo() present = %v, want %v", c.Geo() != nil, tc.want)
			}
		})
	}
}

func TestNew_Sensitivity(t *testing.T) {
	c := New(Params{PrioritySensitivity: floatPtr(72.5)})
	if c.PrioritySensitivity() == nil || *c.PrioritySensitivity() != 72.5 {
		t.Fatalf("PrioritySensitivity() = %v", c.PrioritySensitivity())
	}
	c = New(Params{PrioritySensitivity: floatPtr(math.Inf(1))})
	if c.PrioritySensitivity() != nil {
		t.Error("infinite sensitivity should be dropped")
	}
}

func TestNew_SensitivityIsCopied(t *testing.T) {
	v := 10.0
	c := New(Params{PrioritySensitivity: &v})
	v = 99
	if *c.PrioritySensitivity() != 10 {
		t.Errorf("context mutated through caller pointer: %v", *c.PrioritySensitivity())
	}
}

func TestNew_Sort(t *testing.T) {
	if New(Params{Sort: "price_desc"}).Sort() != sortmode.PriceDesc {
		t.Error("expected price_desc")
	}
	if New(Params{Sort: "bogus"}).Sort() != sortmode.Relevance {
		t.Error("unknown sort should fall back to relevance")
	}
}

func TestNew_TruncatesLongQuery(t *testing.T) {
	long := strings.Repeat("あ", MaxQueryLength)
	c := New(Params{Query: &long})
	got := *c.QueryText()
	if len(got) > MaxQueryLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxQueryLength)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated query is not valid UTF-8")
	}
}
