package query

import "github.com/kailas-cloud/shopsearch/internal/domain/search/scoring"

// FuzzinessAuto delegates typo tolerance to the index engine's length-scaled policy.
const FuzzinessAuto = "AUTO"

// CombineMode controls how function scores merge with each other and with the base score.
type CombineMode string

// Combine modes.
const (
	Sum      CombineMode = "sum"
	Multiply CombineMode = "multiply"
)

// FieldBoost is a searchable field with its relative weight.
type FieldBoost struct {
	Name  string
	Boost float64
}

// BaseClause is the relevance part of the query: match-all or a multi-field text match.
type BaseClause struct {
	matchAll  bool
	text      string
	fields    []FieldBoost
	fuzziness string
}

// MatchAll returns a clause that matches every document with a uniform score.
func MatchAll() BaseClause { return BaseClause{matchAll: true} }

// MultiMatch returns a fuzzy text clause over the given fields.
func MultiMatch(text string, fields []FieldBoost, fuzziness string) BaseClause {
	return BaseClause{text: text, fields: fields, fuzziness: fuzziness}
}

// IsMatchAll reports whether the clause matches every document.
func (b BaseClause) IsMatchAll() bool { return b.matchAll }

// Text returns the query text of a multi-match clause.
func (b BaseClause) Text() string { return b.text }

// Fields returns the weighted fields of a multi-match clause.
func (b BaseClause) Fields() []FieldBoost { return b.fields }

// Fuzziness returns the typo tolerance policy.
func (b BaseClause) Fuzziness() string { return b.fuzziness }

// Filter is an exact term condition applied after scoring and aggregation.
type Filter struct {
	Field string
	Value any
}

// Aggregation requests term buckets over a keyword field ordered by descending count.
type Aggregation struct {
	Name  string
	Field string
	Size  int
}

// Order is a sort direction.
type Order string

// Sort orders.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// SortOverride replaces score ordering with a field ordering.
type SortOverride struct {
	Field string
	Order Order
	// ThenScore breaks ties by descending score.
	ThenScore bool
}

// Highlight requests fragments on Fields wrapped in PreTag/PostTag.
type Highlight struct {
	Fields  []string
	PreTag  string
	PostTag string
}

// Structured is an engine-neutral search query.
// PostFilter restricts displayed hits only; it never narrows Base, so the
// aggregation always counts the unfiltered candidate set.
type Structured struct {
	Base        BaseClause
	Functions   []scoring.Function
	Combine     CombineMode
	PostFilter  *Filter
	Aggregation Aggregation
	Sort        *SortOverride
	Highlight   Highlight
	Size        int
}
