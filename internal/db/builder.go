package db

import (
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

func (b *IndexBuilder) add(t IndexFieldType, names ...string) *IndexBuilder {
	for _, n := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: n, Type: t})
	}
	return b
}

// Keyword adds exact-match fields.
func (b *IndexBuilder) Keyword(names ...string) *IndexBuilder { return b.add(IndexFieldKeyword, names...) }

// Text adds full-text fields.
func (b *IndexBuilder) Text(names ...string) *IndexBuilder { return b.add(IndexFieldText, names...) }

// Integer adds numeric fields.
func (b *IndexBuilder) Integer(names ...string) *IndexBuilder { return b.add(IndexFieldInteger, names...) }

// Boolean adds flag fields.
func (b *IndexBuilder) Boolean(names ...string) *IndexBuilder { return b.add(IndexFieldBoolean, names...) }

// GeoPoint adds location fields.
func (b *IndexBuilder) GeoPoint(names ...string) *IndexBuilder { return b.add(IndexFieldGeoPoint, names...) }

// Date adds timestamp fields.
func (b *IndexBuilder) Date(names ...string) *IndexBuilder { return b.add(IndexFieldDate, names...) }

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// ProductIndex returns the product catalog mapping under the given index name.
func ProductIndex(name string) *IndexDefinition {
	return NewIndex(name).
		Keyword(domain.FieldID).
		Text(domain.FieldName, domain.FieldDescription, domain.FieldDescriptionLong, domain.FieldSearchKeywords).
		Keyword(domain.FieldCategory, domain.FieldBrand, domain.FieldTags).
		Integer(domain.FieldPrice, domain.FieldStock, domain.FieldPriority).
		Boolean(domain.FieldIsSale).
		GeoPoint(domain.FieldLocation).
		Date(domain.FieldCreatedAt, domain.FieldUpdatedAt).
		MustBuild()
}

// String returns a compact debug representation of the mapping.
func (idx *IndexDefinition) String() string {
	parts := []string{idx.Name}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name+":"+f.Type.String())
	}
	return strings.Join(parts, " ")
}
