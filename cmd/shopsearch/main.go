package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/bootstrap"
	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	productrepo "github.com/kailas-cloud/shopsearch/internal/repository/product"
	searchrepo "github.com/kailas-cloud/shopsearch/internal/repository/search"
	"github.com/kailas-cloud/shopsearch/internal/repository/syncqueue"
	"github.com/kailas-cloud/shopsearch/internal/tracer"
	chiTransport "github.com/kailas-cloud/shopsearch/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/shopsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
	"github.com/kailas-cloud/shopsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, logpkg.FileOutput{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
		zap.String("index_name", cfg.Index.Name),
		zap.Bool("queue_enabled", cfg.Queue.Enabled()),
	)

	ctx := context.Background()

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version.Version,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	weights, err := bootstrap.Weights(cfg.Ranking)
	if err != nil {
		logger.Fatal("Invalid ranking configuration", zap.Error(err))
	}

	index, err := bootstrap.OpenIndex(ctx, cfg.Index)
	if err != nil {
		logger.Fatal("Failed to open search index", zap.Error(err))
	}
	defer index.Close()

	// The queue is optional: without it /api/sync fails and health reports it missing.
	queueStore, err := bootstrap.OpenQueue(ctx, cfg.Queue)
	if err != nil {
		logger.Warn("Sync queue unavailable, continuing without it", zap.Error(err))
	}
	if queueStore != nil {
		defer queueStore.Close()
	}

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Repositories
	productRepo := productrepo.New(index, db.ProductIndex(cfg.Index.Name), cfg.Index.Driver)
	searchRepo := searchrepo.New(index, cfg.Index.Driver)

	// Pass nil interfaces (not typed nil pointers) when the queue is off.
	var (
		queue       cataloguc.SyncQueue
		queuePinger healthuc.Pinger
	)
	if queueStore != nil {
		queue = syncqueue.New(queueStore, cfg.Queue.Key)
		queuePinger = queueStore
	}

	// Use case services
	searchSvc := searchuc.New(searchRepo, weights, cfg.Search.PageSize)
	catalogSvc := cataloguc.New(productRepo, queue, logger)
	healthSvc := healthuc.New(index, queuePinger)

	if err := catalogSvc.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}

	server := chiTransport.NewServer(searchSvc, catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":   "internal error",
						"details": fmt.Sprint(rvr),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
