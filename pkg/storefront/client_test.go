package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient("not a url"); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

func TestClient_Search(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"103","name":"<b>パーカー</b>","_score":1001}],` +
			`"categories":[{"name":"アウター","count":2}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	lat, lon, sens := 35.68, 139.76, 80.0
	res, err := c.Search(context.Background(), Params{
		Query: "パーカー", Category: "アウター", Lat: &lat, Lon: &lon,
		Sort: "price_asc", Pref: "トップス", PriceSensitivity: &sens,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/api/products/search" {
		t.Errorf("path = %q", gotPath)
	}
	want := map[string]string{
		"q": "パーカー", "category": "アウター", "lat": "35.68", "lon": "139.76",
		"sort": "price_asc", "pref": "トップス", "price_sensitivity": "80",
	}
	for k, v := range want {
		if got := gotQuery[k]; len(got) != 1 || got[0] != v {
			t.Errorf("param %s = %v, want %q", k, got, v)
		}
	}

	if len(res.Products) != 1 || res.Products[0]["id"] != "103" {
		t.Errorf("products = %v", res.Products)
	}
	if len(res.Categories) != 1 || res.Categories[0] != (Category{Name: "アウター", Count: 2}) {
		t.Errorf("categories = %v", res.Categories)
	}
}

func TestClient_Search_OmitsEmptyParams(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	res, err := c.Search(context.Background(), Params{})
	if err != nil {
		t.Fatal(err)
	}
	if rawQuery != "" {
		t.Errorf("query = %q, want empty", rawQuery)
	}
	if res.Products == nil || res.Categories == nil {
		t.Error("expected non-nil empty slices")
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "search failed", "details": "index unavailable"})
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, err := c.Search(context.Background(), Params{Query: "x"})
	if !IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
	if want := "storefront: status 500: search failed: index unavailable"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestClient_Search_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, err := c.Search(context.Background(), Params{})
	if !IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
	if want := "storefront: status 502: bad gateway"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
