package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/bootstrap"
	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	productrepo "github.com/kailas-cloud/shopsearch/internal/repository/product"
	searchrepo "github.com/kailas-cloud/shopsearch/internal/repository/search"
	"github.com/kailas-cloud/shopsearch/internal/repository/syncqueue"
	cataloguc "github.com/kailas-cloud/shopsearch/internal/usecase/catalog"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// runtime holds the stores and services a command works with.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	index   db.IndexStore
	queue   *syncqueue.Repo
	catalog *cataloguc.Service
	search  *searchuc.Service
	closers []func()
}

// openRuntime loads configuration for env and connects to the configured stores.
func openRuntime(ctx context.Context, env string) (*runtime, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, logpkg.FileOutput{})
	if err != nil {
		return nil, err
	}

	weights, err := bootstrap.Weights(cfg.Ranking)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	rt.index, err = bootstrap.OpenIndex(ctx, cfg.Index)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, rt.index.Close)

	var queue cataloguc.SyncQueue
	qs, err := bootstrap.OpenQueue(ctx, cfg.Queue)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if qs != nil {
		rt.closers = append(rt.closers, qs.Close)
		rt.queue = syncqueue.New(qs, cfg.Queue.Key)
		queue = rt.queue
	}

	products := productrepo.New(rt.index, db.ProductIndex(cfg.Index.Name), cfg.Index.Driver)
	rt.catalog = cataloguc.New(products, queue, logger)
	rt.search = searchuc.New(searchrepo.New(rt.index, cfg.Index.Driver), weights, cfg.Search.PageSize)

	if err := rt.catalog.EnsureIndex(ctx); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// requireQueue fails when no sync queue is configured.
func (rt *runtime) requireQueue() error {
	if rt.queue == nil {
		return fmt.Errorf("queue.addrs is not configured for this environment")
	}
	return nil
}

// Close releases stores in reverse order of opening.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	_ = rt.logger.Sync()
}
