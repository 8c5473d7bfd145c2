package sortmode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Relevance, PriceAsc, PriceDesc}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "newest", "PRICE_ASC", "price"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestParse(t *testing.T) {
	tests := map[string]Mode{
		"relevance":  Relevance,
		"price_asc":  PriceAsc,
		"price_desc": PriceDesc,
		"":           Relevance,
		"rating":     Relevance,
		"Price_Asc":  Relevance,
	}
	for in, want := range tests {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestByPrice(t *testing.T) {
	if Relevance.ByPrice() {
		t.Error("Relevance.ByPrice() = true")
	}
	if !PriceAsc.ByPrice() || !PriceDesc.ByPrice() {
		t.Error("price modes must report ByPrice")
	}
}
