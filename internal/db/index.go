package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates supported index field types.
type IndexFieldType int

const (
	// IndexFieldKeyword is an exact-match, aggregatable string.
	IndexFieldKeyword IndexFieldType = iota
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText
	// IndexFieldInteger is a whole number.
	IndexFieldInteger
	// IndexFieldBoolean is a true/false flag.
	IndexFieldBoolean
	// IndexFieldGeoPoint is a lat/lon pair.
	IndexFieldGeoPoint
	// IndexFieldDate is an RFC 3339 timestamp.
	IndexFieldDate
)

// String returns the field type name as used in index mappings.
func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldKeyword:
		return "keyword"
	case IndexFieldText:
		return "text"
	case IndexFieldInteger:
		return "integer"
	case IndexFieldBoolean:
		return "boolean"
	case IndexFieldGeoPoint:
		return "geo_point"
	case IndexFieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// IndexField describes a single field in an index mapping.
type IndexField struct {
	Name string
	Type IndexFieldType
}

// IndexDefinition is a complete index mapping.
type IndexDefinition struct {
	Name   string
	Fields []IndexField
}

// Field looks up a field by name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-z0-9_-]+ and does not start with '-' or '_'.
func IsValidIdentifier(s string) bool {
	if s == "" || s[0] == '-' || s[0] == '_' {
		return false
	}
	for _, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '-'
		if !isLower && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
