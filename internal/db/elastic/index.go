package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

// IndexExists reports whether the named index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.es.Indices.Exists([]string{name}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, transportError(db.OpIndexExists, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, responseError(db.OpIndexExists, res)
	}
}

// EnsureIndex creates the index with its mapping when absent.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) (bool, error) {
	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.createIndex(ctx, def); err != nil {
		return false, err
	}
	return true, nil
}

// ResetIndex drops the index if present and recreates it with its mapping.
func (s *Store) ResetIndex(ctx context.Context, def *db.IndexDefinition) error {
	res, err := s.es.Indices.Delete([]string{def.Name},
		s.es.Indices.Delete.WithContext(ctx),
		s.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return transportError(db.OpDeleteIndex, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError(db.OpDeleteIndex, res)
	}

	return s.createIndex(ctx, def)
}

func (s *Store) createIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	body, err := json.Marshal(RenderMapping(def))
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("encode mapping: %w", err)}
	}

	res, err := s.es.Indices.Create(def.Name,
		s.es.Indices.Create.WithBody(bytes.NewReader(body)),
		s.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return transportError(db.OpCreateIndex, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusBadRequest {
			var eb errorBody
			if json.NewDecoder(res.Body).Decode(&eb) == nil && eb.Error.Type == "resource_already_exists_exception" {
				return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
			}
			return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("create index %s: [%s] %s", def.Name, res.Status(), eb.Error.Reason)}
		}
		return responseError(db.OpCreateIndex, res)
	}
	return nil
}
