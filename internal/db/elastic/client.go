package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Compile-time check: Store implements db.IndexStore.
var _ db.IndexStore = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Store implements db.IndexStore on top of Elasticsearch.
type Store struct {
	es    *elasticsearch.Client
	index string
}

// NewStore creates an Elasticsearch-backed index store. Requests are never retried.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("addresses is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{es: es, index: cfg.Index}, nil
}

// Index returns the name of the product index.
func (s *Store) Index() string { return s.index }

// Ping checks cluster connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: domain.NewIndexError("", err.Error())}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: domain.NewIndexError(res.Status(), "ping failed")}
	}
	return nil
}

// Close is a no-op; the client holds no resources beyond its HTTP transport.
func (s *Store) Close() {}

// errorBody is the Elasticsearch error envelope.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// responseError converts a failed response into an index error carrying the engine's reason.
func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	var eb errorBody
	reason := string(body)
	if err := json.Unmarshal(body, &eb); err == nil && (eb.Error.Reason != "" || eb.Error.Type != "") {
		reason = eb.Error.Type
		if eb.Error.Reason != "" {
			reason = eb.Error.Type + ": " + eb.Error.Reason
		}
	}
	if reason == "" {
		reason = "empty error response"
	}
	return &db.Error{Op: op, Err: domain.NewIndexError(res.Status(), reason)}
}

// transportError wraps a request that never produced a response.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)}
	}
	return &db.Error{Op: op, Err: domain.NewIndexError("", err.Error())}
}
