package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const searchPath = "/api/products/search"

// Params are the inputs of a storefront search. Zero values are omitted from the request.
type Params struct {
	Query            string
	Category         string
	Lat              *float64
	Lon              *float64
	Sort             string
	Pref             string
	PriceSensitivity *float64
}

func (p Params) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	setFloat := func(k string, f *float64) {
		if f != nil {
			v.Set(k, strconv.FormatFloat(*f, 'f', -1, 64))
		}
	}
	set("q", p.Query)
	set("category", p.Category)
	set("sort", p.Sort)
	set("pref", p.Pref)
	setFloat("lat", p.Lat)
	setFloat("lon", p.Lon)
	setFloat("price_sensitivity", p.PriceSensitivity)
	return v
}

// Category is a facet bucket of a search response.
type Category struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// SearchResponse is the body of a successful search. Each product carries its
// source fields plus id and _score, with name and description highlighted.
type SearchResponse struct {
	Products   []map[string]any `json:"products"`
	Categories []Category       `json:"categories"`
}

// Client calls the shopsearch HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	obs     *observer
}

// NewClient creates a search client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	cfg := newConfig(opts)
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return newClient(baseURL, cfg, obs)
}

func newClient(baseURL string, cfg *clientConfig, obs *observer) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("storefront: invalid base URL %q: %w", baseURL, err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cfg.httpClient,
		obs:     obs,
	}, nil
}

// Search runs one storefront search. No retries are attempted.
func (c *Client) Search(ctx context.Context, p Params) (_ *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "q", p.Query) }()

	u := c.baseURL + searchPath
	if q := p.values().Encode(); q != "" {
		u += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeAPIError(res)
	}

	var out SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("storefront: decode search response: %w", err)
	}
	if out.Products == nil {
		out.Products = []map[string]any{}
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}
	return &out, nil
}

func decodeAPIError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
