package storefront

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Client or Session.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client

	analyticsURL string
	analytics    Analytics
	store        AffinityStore

	userID    string
	visitorID string
	pageURL   string

	overlayDelay time.Duration
	onOverlay    func(Promotion)

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func newConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		httpClient:   http.DefaultClient,
		overlayDelay: DefaultOverlayDelay,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	return cfg
}

// WithHTTPClient sets the HTTP client used for search and analytics calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		if hc != nil {
			c.httpClient = hc
		}
	})
}

// WithAnalyticsURL points the session at the analytics collaborator.
// Events are posted to {url}/api/v1/track.
func WithAnalyticsURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.analyticsURL = url
	})
}

// WithAnalytics injects an analytics port. Takes precedence over WithAnalyticsURL.
func WithAnalytics(a Analytics) Option {
	return optionFunc(func(c *clientConfig) {
		c.analytics = a
	})
}

// WithAffinityStore sets durable storage for the affinity history.
// Defaults to an in-memory store that is lost on exit.
func WithAffinityStore(s AffinityStore) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = s
	})
}

// WithVisitor sets the user and visitor identifiers sent with every event.
func WithVisitor(userID, visitorID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userID = userID
		c.visitorID = visitorID
	})
}

// WithPageURL sets the page URL reported with tracked events.
func WithPageURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageURL = url
	})
}

// WithOverlay sets the promotion display delay and the callback run when an
// overlay becomes visible. A non-positive delay keeps the default of 3s.
func WithOverlay(delay time.Duration, onShow func(Promotion)) Option {
	return optionFunc(func(c *clientConfig) {
		if delay > 0 {
			c.overlayDelay = delay
		}
		c.onOverlay = onShow
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
