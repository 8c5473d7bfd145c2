package blevestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

const sourcePrefix = "src:"

func sourceKey(id string) []byte { return []byte(sourcePrefix + id) }

// Upsert indexes doc under id and keeps its JSON source for retrieval.
// The write is visible to the next search.
func (s *Store) Upsert(_ context.Context, id string, doc map[string]any) (db.WriteResult, error) {
	idx, err := s.current()
	if err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: err}
	}

	src, err := json.Marshal(doc)
	if err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("encode document: %w", err)}
	}

	prev, err := idx.GetInternal(sourceKey(id))
	if err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: err}
	}

	b := idx.NewBatch()
	if err := b.Index(id, doc); err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: err}
	}
	b.SetInternal(sourceKey(id), src)
	if err := idx.Batch(b); err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: err}
	}

	if prev == nil {
		return db.Created, nil
	}
	return db.Updated, nil
}

func loadSource(idx bleve.Index, id string) (map[string]any, error) {
	data, err := idx.GetInternal(sourceKey(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return map[string]any{}, nil
	}
	var src map[string]any
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("decode source %s: %w", id, err)
	}
	return src, nil
}
