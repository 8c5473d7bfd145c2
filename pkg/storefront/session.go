package storefront

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Session personalizes one visitor's searches. It feeds affinity and the
// latest price-sensitivity insight into every search and schedules the
// promotions the analytics collaborator asks for.
type Session struct {
	client    *Client
	analytics Analytics
	tracker   *Tracker
	overlay   *Scheduler
	logger    *slog.Logger

	mu          sync.Mutex
	sensitivity *float64
}

// NewSession creates a session against the shopsearch service at searchURL.
func NewSession(searchURL string, opts ...Option) (*Session, error) {
	cfg := newConfig(opts)
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	client, err := newClient(searchURL, cfg, obs)
	if err != nil {
		return nil, err
	}

	analytics := cfg.analytics
	if analytics == nil && cfg.analyticsURL != "" {
		analytics = newHTTPAnalytics(cfg.analyticsURL, cfg, obs)
	}
	store := cfg.store
	if store == nil {
		store = NewMemoryStore()
	}

	return &Session{
		client:    client,
		analytics: analytics,
		tracker:   NewTracker(store, cfg.logger),
		overlay:   NewScheduler(cfg.overlayDelay, cfg.onOverlay),
		logger:    cfg.logger,
	}, nil
}

// Tracker returns the session's affinity tracker.
func (s *Session) Tracker() *Tracker { return s.tracker }

// Overlay returns the session's promotion scheduler.
func (s *Session) Overlay() *Scheduler { return s.overlay }

// PriceSensitivity returns the latest inferred price sensitivity.
func (s *Session) PriceSensitivity() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sensitivity == nil {
		return 0, false
	}
	return *s.sensitivity, true
}

// Track reports an event to the analytics collaborator. Failures are logged
// and swallowed; the returned Insight is empty in that case.
func (s *Session) Track(ctx context.Context, event string, props map[string]any) Insight {
	if s.analytics == nil {
		return Insight{}
	}
	in, err := s.analytics.Track(ctx, event, props)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("track failed, continuing without insight", "event", event, "error", err)
		}
		return Insight{}
	}

	if in.PriceSensitivity != nil {
		v := *in.PriceSensitivity
		s.mu.Lock()
		s.sensitivity = &v
		s.mu.Unlock()
	}
	if in.Promotion != nil {
		s.overlay.Offer(*in.Promotion)
	}
	return in
}

// Search runs a search with pref and price_sensitivity filled from the
// visitor's history unless p already sets them.
func (s *Session) Search(ctx context.Context, p Params) (*SearchResponse, error) {
	if p.Pref == "" {
		if pref, ok := s.tracker.Preferred(); ok {
			p.Pref = pref
		}
	}
	if p.PriceSensitivity == nil {
		if v, ok := s.PriceSensitivity(); ok {
			p.PriceSensitivity = &v
		}
	}
	return s.client.Search(ctx, p)
}

// Typeahead returns a debounced synchronizer that searches with base and the typed text.
func (s *Session) Typeahead(base Params, delay time.Duration, onResult func(Result)) *Synchronizer {
	return NewSynchronizer(func(ctx context.Context, text string) (*SearchResponse, error) {
		p := base
		p.Query = text
		return s.Search(ctx, p)
	}, onResult, delay)
}

// ClickCategory records a category selection as affinity and reports it.
func (s *Session) ClickCategory(ctx context.Context, category string) error {
	if err := s.tracker.Record(category); err != nil {
		return err
	}
	s.Track(ctx, "category_click", map[string]any{"category": category})
	return nil
}

// ClickProduct records the product's category as affinity and reports the click.
func (s *Session) ClickProduct(ctx context.Context, productID, category string) error {
	if err := s.tracker.Record(category); err != nil {
		return err
	}
	s.Track(ctx, "product_click", map[string]any{"productId": productID, "category": category})
	return nil
}

// Close stops the promotion scheduler.
func (s *Session) Close() {
	s.overlay.Close()
}
