// Package bootstrap builds stores and ranking settings from configuration
// for the server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/db/blevestore"
	dbElastic "github.com/kailas-cloud/shopsearch/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/shopsearch/internal/db/redis"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

// OpenIndex creates the index store selected by cfg.Driver and waits for it to answer.
// The embedded driver answers only once its index is open, so it is not waited on.
func OpenIndex(ctx context.Context, cfg config.IndexConfig) (db.IndexStore, error) {
	switch cfg.Driver {
	case config.DriverElasticsearch:
		s, err := dbElastic.NewStore(dbElastic.Config{
			Addresses: cfg.Addresses,
			Username:  cfg.Username,
			Password:  cfg.Password,
			Index:     cfg.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		if err := db.WaitForPing(ctx, s, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			return nil, fmt.Errorf("elasticsearch not ready: %w", err)
		}
		return s, nil
	case config.DriverBleve:
		return blevestore.NewStore(blevestore.Config{Path: cfg.Path}), nil
	default:
		return nil, fmt.Errorf("unknown index driver %q", cfg.Driver)
	}
}

// OpenQueue connects to the sync queue. It returns nil when no queue is configured.
func OpenQueue(ctx context.Context, cfg config.QueueConfig) (db.QueueStore, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if err := s.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Weights overlays configured ranking weights on the defaults and validates the result.
func Weights(cfg config.RankingConfig) (searchuc.Weights, error) {
	w := searchuc.DefaultWeights()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&w.Sale, cfg.Sale)
	set(&w.Priority, cfg.Priority)
	set(&w.PreferredCategory, cfg.PreferredCategory)
	set(&w.CheapPrice, cfg.CheapPrice)
	set(&w.PremiumPrice, cfg.PremiumPrice)
	set(&w.Geo, cfg.Geo)
	set(&w.SensitivityThreshold, cfg.SensitivityThreshold)

	if err := w.Validate(); err != nil {
		return searchuc.Weights{}, fmt.Errorf("ranking weights: %w", err)
	}
	return w, nil
}
