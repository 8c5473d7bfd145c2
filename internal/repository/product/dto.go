package product

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// buildDocument converts a Product into the index document shape.
// Field names follow the product JSON tags; zero-valued optional fields are omitted.
func buildDocument(p *domain.Product) (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return doc, nil
}
