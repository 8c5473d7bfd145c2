package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	cataloguc "github.com/kailas-cloud/shopsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
)

// maxReindexBody caps the product document accepted by POST /api/reindex.
const maxReindexBody = 1 << 20

// Searcher runs product searches.
type Searcher interface {
	Search(ctx context.Context, sc request.SearchContext) (result.Response, error)
}

// Catalog keeps the index in step with the product catalog.
type Catalog interface {
	Upsert(ctx context.Context, p *domain.Product) (cataloguc.WriteResult, error)
	Drain(ctx context.Context) ([]string, error)
	Seed(ctx context.Context) (int, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, summary string) bool

// Server serves the storefront search API.
type Server struct {
	search        Searcher
	catalog       Catalog
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, catalog Catalog, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		invalidProductHandler,
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusInternalServerError),
		sentinelHandler(domain.ErrQueueUnavailable, http.StatusInternalServerError),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/products/search", s.SearchProducts)
	r.Post("/api/reindex", s.Reindex)
	r.Get("/api/sync", s.Sync)
	r.Get("/api/setup", s.Setup)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchResponse struct {
	Products   []map[string]any     `json:"products"`
	Categories []result.FacetBucket `json:"categories"`
}

// SearchProducts handles GET /api/products/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	sc := bindSearchParams(r).searchContext()

	resp, err := s.search.Search(r.Context(), sc)
	if err != nil {
		s.handleDomainError(w, r, err, "search failed")
		return
	}

	products := make([]map[string]any, len(resp.Products))
	for i, h := range resp.Products {
		products[i] = h.Document()
	}
	writeJSON(w, http.StatusOK, searchResponse{Products: products, Categories: resp.Facets})
}

type reindexResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Reindex handles POST /api/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReindexBody)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}

	res, err := s.catalog.Upsert(r.Context(), &p)
	if err != nil {
		s.handleDomainError(w, r, err, "reindex failed")
		return
	}

	writeJSON(w, http.StatusOK, reindexResponse{
		Success: true,
		Message: fmt.Sprintf("Product %s indexed", p.ID),
		Result:  string(res),
	})
}

type syncResponse struct {
	Success     bool     `json:"success"`
	SyncedCount int      `json:"syncedCount"`
	SyncedList  []string `json:"syncedList"`
}

// Sync handles GET /api/sync.
func (s *Server) Sync(w http.ResponseWriter, r *http.Request) {
	names, err := s.catalog.Drain(r.Context())
	if err != nil {
		s.logger.Warn("Sync stopped early", zap.Int("synced", len(names)))
		s.handleDomainError(w, r, err, "sync failed")
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{Success: true, SyncedCount: len(names), SyncedList: names})
}

// Setup handles GET /api/setup.
func (s *Server) Setup(w http.ResponseWriter, r *http.Request) {
	n, err := s.catalog.Seed(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err, "setup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Setup complete: %d products indexed", n),
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, summary, details string) {
	writeJSON(w, status, errorResponse{Error: summary, Details: details})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, summary string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, summary, err.Error())
		return true
	}
}

// invalidProductHandler rejects documents that fail validation.
func invalidProductHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidProduct) {
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid data", err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, summary string) {
	log := s.logger.With(zap.String("path", r.URL.Path))
	for _, h := range s.errorHandlers {
		if h(w, err, summary) {
			log.Warn("domain error", zap.String("summary", summary), zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.String("summary", summary), zap.Error(err))
	writeError(w, http.StatusInternalServerError, summary, err.Error())
}
