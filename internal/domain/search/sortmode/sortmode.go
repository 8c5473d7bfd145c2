package sortmode

// Mode is the requested result ordering.
type Mode string

// Sort mode constants.
const (
	// Relevance orders by combined score.
	Relevance Mode = "relevance"
	PriceAsc  Mode = "price_asc"
	PriceDesc Mode = "price_desc"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Relevance || m == PriceAsc || m == PriceDesc
}

// Parse maps a raw parameter to a mode. Unknown or empty values fall back to Relevance.
func Parse(s string) Mode {
	m := Mode(s)
	if m.IsValid() {
		return m
	}
	return Relevance
}

// ByPrice reports whether the mode overrides ordering with the price field.
func (m Mode) ByPrice() bool {
	return m == PriceAsc || m == PriceDesc
}
