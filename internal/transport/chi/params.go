package chi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/logger"
)

// SearchProductsParams are the query parameters of GET /api/products/search.
type SearchProductsParams struct {
	Q                *string  `form:"q,omitempty"`
	Category         *string  `form:"category,omitempty"`
	Lat              *float64 `form:"lat,omitempty"`
	Lon              *float64 `form:"lon,omitempty"`
	Pref             *string  `form:"pref,omitempty"`
	Sort             *string  `form:"sort,omitempty"`
	PriceSensitivity *float64 `form:"price_sensitivity,omitempty"`
}

// bindSearchParams binds every optional parameter. A value that fails to
// parse is dropped and the rest of the request proceeds without it.
func bindSearchParams(r *http.Request) SearchProductsParams {
	var p SearchProductsParams
	q := r.URL.Query()
	log := logger.FromContext(r.Context())

	bind := func(name string, dest any) bool {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			log.Debug("ignoring malformed query parameter", zap.String("param", name), zap.Error(err))
			return false
		}
		return true
	}
	bind("q", &p.Q)
	bind("category", &p.Category)
	bind("pref", &p.Pref)
	bind("sort", &p.Sort)

	var lat, lon, sens *float64
	if bind("lat", &lat) {
		p.Lat = lat
	}
	if bind("lon", &lon) {
		p.Lon = lon
	}
	if bind("price_sensitivity", &sens) {
		p.PriceSensitivity = sens
	}

	return p
}

// searchContext normalizes bound parameters into a search context.
func (p SearchProductsParams) searchContext() request.SearchContext {
	var sort string
	if p.Sort != nil {
		sort = *p.Sort
	}
	return request.New(request.Params{
		Query:               p.Q,
		Category:            p.Category,
		Lat:                 p.Lat,
		Lon:                 p.Lon,
		PreferredCategory:   p.Pref,
		PrioritySensitivity: p.PriceSensitivity,
		Sort:                sort,
	})
}
