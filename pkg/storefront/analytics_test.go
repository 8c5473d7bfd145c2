package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPAnalytics_Track(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/track" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"insights":{"price_sensitivity":"82.5"},` +
			`"action":{"displayPopUp":true,"isInsightTriggered":true,"title":"t","description":"d","buttonText":"b"}}`))
	}))
	defer srv.Close()

	a, err := NewHTTPAnalytics(srv.URL,
		WithVisitor("demo_user_123", "browser_vid_001"),
		WithPageURL("http://shop.local/search"),
	)
	if err != nil {
		t.Fatal(err)
	}
	in, err := a.Track(context.Background(), "page_view", map[string]any{"category": "アウター", "vid": "spoofed"})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	want := map[string]any{
		"userId": "demo_user_123", "vid": "browser_vid_001", "event": "page_view",
		"pageUrl": "http://shop.local/search", "category": "アウター",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, body[k], v)
		}
	}

	if in.PriceSensitivity == nil || *in.PriceSensitivity != 82.5 {
		t.Errorf("PriceSensitivity = %v", in.PriceSensitivity)
	}
	if in.Promotion == nil || *in.Promotion != (Promotion{Title: "t", Description: "d", ButtonText: "b", IsInsightTriggered: true}) {
		t.Errorf("Promotion = %+v", in.Promotion)
	}
}

func TestHTTPAnalytics_EmptyInsight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"action":{"displayPopUp":false,"isInsightTriggered":true}}`))
	}))
	defer srv.Close()

	a, _ := NewHTTPAnalytics(srv.URL)
	in, err := a.Track(context.Background(), "page_view", nil)
	if err != nil {
		t.Fatal(err)
	}
	if in.PriceSensitivity != nil || in.Promotion != nil {
		t.Errorf("Insight = %+v, want empty", in)
	}
}

func TestHTTPAnalytics_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }},
		{"malformed", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"insights":`)) }},
		{"bad sensitivity", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"insights":{"price_sensitivity":"high"}}`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			a, _ := NewHTTPAnalytics(srv.URL)
			if _, err := a.Track(context.Background(), "page_view", nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
