package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/db"
)

// Upsert indexes doc under id and refreshes so the next search sees it.
func (s *Store) Upsert(ctx context.Context, id string, doc map[string]any) (db.WriteResult, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("encode document: %w", err)}
	}

	res, err := s.es.Index(s.index, bytes.NewReader(body),
		s.es.Index.WithDocumentID(id),
		s.es.Index.WithRefresh("true"),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		return "", transportError(db.OpUpsert, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", responseError(db.OpUpsert, res)
	}

	var ir struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ir); err != nil {
		return "", &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("decode response: %w", err)}
	}
	if ir.Result == string(db.Created) {
		return db.Created, nil
	}
	return db.Updated, nil
}
