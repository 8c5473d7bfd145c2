// Package blevestore is an embedded index gateway on bleve.
//
// Bleve supplies text relevance, highlight fragments and the category facet
// over the unfiltered candidate set. Scoring functions, the post-filter and
// the sort override are applied in process afterwards, mirroring how the
// Elasticsearch gateway delegates them to function_score and post_filter.
package blevestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Compile-time check: Store implements db.IndexStore.
var _ db.IndexStore = (*Store)(nil)

// Config selects where the index lives. An empty Path keeps it in memory.
type Config struct {
	Path string
}

// Store implements db.IndexStore on an embedded bleve index.
type Store struct {
	path string

	mu   sync.RWMutex
	idx  bleve.Index
	name string
}

// NewStore creates an embedded store. The index itself is opened by EnsureIndex or ResetIndex.
func NewStore(cfg Config) *Store {
	return &Store{path: cfg.Path}
}

// Ping checks that the index is open and readable.
func (s *Store) Ping(_ context.Context) error {
	idx, err := s.current()
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if _, err := idx.DocCount(); err != nil {
		return &db.Error{Op: db.OpPing, Err: domain.NewIndexError("", err.Error())}
	}
	return nil
}

// Close closes the index if open.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		_ = s.idx.Close()
		s.idx = nil
	}
}

// IndexExists reports whether the named index is open.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx != nil && s.name == name, nil
}

// EnsureIndex opens the index, creating it when absent.
func (s *Store) EnsureIndex(_ context.Context, def *db.IndexDefinition) (bool, error) {
	if err := def.Validate(); err != nil {
		return false, &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx != nil {
		return false, nil
	}

	if s.path != "" {
		idx, err := bleve.Open(s.path)
		if err == nil {
			s.idx, s.name = idx, def.Name
			return false, nil
		}
		if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return false, &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("open %s: %w", s.path, err)}
		}
	}

	idx, err := s.create(def)
	if err != nil {
		return false, err
	}
	s.idx, s.name = idx, def.Name
	return true, nil
}

// ResetIndex discards all documents and recreates the index.
func (s *Store) ResetIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx != nil {
		_ = s.idx.Close()
		s.idx = nil
	}
	if s.path != "" {
		if err := os.RemoveAll(s.path); err != nil {
			return &db.Error{Op: db.OpDeleteIndex, Err: err}
		}
	}

	idx, err := s.create(def)
	if err != nil {
		return err
	}
	s.idx, s.name = idx, def.Name
	return nil
}

func (s *Store) create(def *db.IndexDefinition) (bleve.Index, error) {
	m := buildMapping(def)
	var (
		idx bleve.Index
		err error
	)
	if s.path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.New(s.path, m)
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return idx, nil
}

func (s *Store) current() (bleve.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, db.ErrIndexNotFound)
	}
	return s.idx, nil
}

// buildMapping translates an index definition into a static bleve mapping.
func buildMapping(def *db.IndexDefinition) mapping.IndexMapping {
	doc := bleve.NewDocumentStaticMapping()
	for _, f := range def.Fields {
		var fm *mapping.FieldMapping
		switch f.Type {
		case db.IndexFieldText:
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = cjk.AnalyzerName
			fm.IncludeTermVectors = true
		case db.IndexFieldKeyword:
			fm = bleve.NewKeywordFieldMapping()
		case db.IndexFieldInteger:
			fm = bleve.NewNumericFieldMapping()
		case db.IndexFieldBoolean:
			fm = bleve.NewBooleanFieldMapping()
		case db.IndexFieldGeoPoint:
			fm = bleve.NewGeoPointFieldMapping()
		case db.IndexFieldDate:
			fm = bleve.NewDateTimeFieldMapping()
		default:
			continue
		}
		fm.Store = true
		doc.AddFieldMappingsAt(f.Name, fm)
	}

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}
