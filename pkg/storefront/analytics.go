package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const trackPath = "/api/v1/track"

// Insight is what the analytics collaborator inferred from an event.
// Both parts are optional.
type Insight struct {
	PriceSensitivity *float64
	Promotion        *Promotion
}

// Analytics forwards behaviour events to the analytics collaborator.
type Analytics interface {
	Track(ctx context.Context, event string, props map[string]any) (Insight, error)
}

// HTTPAnalytics posts events to {base}/api/v1/track.
type HTTPAnalytics struct {
	endpoint  string
	http      *http.Client
	userID    string
	visitorID string
	pageURL   string
	obs       *observer
}

// NewHTTPAnalytics creates an analytics port for the collaborator at baseURL.
func NewHTTPAnalytics(baseURL string, opts ...Option) (*HTTPAnalytics, error) {
	cfg := newConfig(opts)
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return newHTTPAnalytics(baseURL, cfg, obs), nil
}

func newHTTPAnalytics(baseURL string, cfg *clientConfig, obs *observer) *HTTPAnalytics {
	return &HTTPAnalytics{
		endpoint:  strings.TrimRight(baseURL, "/") + trackPath,
		http:      cfg.httpClient,
		userID:    cfg.userID,
		visitorID: cfg.visitorID,
		pageURL:   cfg.pageURL,
		obs:       obs,
	}
}

type trackResponse struct {
	Insights *struct {
		PriceSensitivity *looseFloat `json:"price_sensitivity"`
	} `json:"insights"`
	Action *struct {
		DisplayPopUp       bool   `json:"displayPopUp"`
		IsInsightTriggered bool   `json:"isInsightTriggered"`
		Title              string `json:"title"`
		Description        string `json:"description"`
		ButtonText         string `json:"buttonText"`
	} `json:"action"`
}

// Track posts one event. Identity fields are sent alongside props; props may
// not override them.
func (a *HTTPAnalytics) Track(ctx context.Context, event string, props map[string]any) (_ Insight, err error) {
	start := time.Now()
	defer func() { a.obs.observe("track", start, err, "event", event) }()

	body := make(map[string]any, len(props)+4)
	for k, v := range props {
		body[k] = v
	}
	body["userId"] = a.userID
	body["vid"] = a.visitorID
	body["event"] = event
	body["pageUrl"] = a.pageURL

	payload, err := json.Marshal(body)
	if err != nil {
		return Insight{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Insight{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.http.Do(req)
	if err != nil {
		return Insight{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Insight{}, decodeAPIError(res)
	}

	var tr trackResponse
	if err := json.NewDecoder(res.Body).Decode(&tr); err != nil {
		return Insight{}, fmt.Errorf("storefront: decode track response: %w", err)
	}
	return tr.insight(), nil
}

func (tr trackResponse) insight() Insight {
	var in Insight
	if tr.Insights != nil && tr.Insights.PriceSensitivity != nil {
		v := float64(*tr.Insights.PriceSensitivity)
		in.PriceSensitivity = &v
	}
	if a := tr.Action; a != nil && a.DisplayPopUp {
		in.Promotion = &Promotion{
			Title:              a.Title,
			Description:        a.Description,
			ButtonText:         a.ButtonText,
			IsInsightTriggered: a.IsInsightTriggered,
		}
	}
	return in
}

// looseFloat accepts a JSON number or a numeric string.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price_sensitivity: %w", err)
	}
	*f = looseFloat(v)
	return nil
}
