// Package scoring defines the boost functions a structured query carries.
//
// Function is a closed set: BoostIfEqual, FieldValueBoost and GeoProximityDecay
// are its only implementations, so a type switch over them is exhaustive.
package scoring

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/shopsearch/internal/domain/geo"
)

// Kind names a scoring function variant.
type Kind string

// Function kinds.
const (
	KindBoostIfEqual      Kind = "boost_if_equal"
	KindFieldValueBoost   Kind = "field_value_boost"
	KindGeoProximityDecay Kind = "geo_proximity_decay"
)

// Function is one additive boost. Implementations are limited to this package.
type Function interface {
	Kind() Kind
	sealed()
}

// Curve transforms a numeric field value before weighting.
type Curve string

// Supported curves.
const (
	Linear     Curve = "linear"
	Reciprocal Curve = "reciprocal"
	LogPlusOne Curve = "log_plus_one"
)

// Apply maps x through the curve. Reciprocal yields 0 for non-positive input
// and LogPlusOne yields 0 below zero, so the result is never negative for x >= 0.
func (c Curve) Apply(x float64) float64 {
	switch c {
	case Reciprocal:
		if x <= 0 {
			return 0
		}
		return 1 / x
	case LogPlusOne:
		if x <= 0 {
			return 0
		}
		return math.Log10(1 + x)
	default:
		return x
	}
}

// BoostIfEqual adds Weight when Field equals Value.
type BoostIfEqual struct {
	Field  string
	Value  any
	Weight float64
}

// Kind implements Function.
func (BoostIfEqual) Kind() Kind { return KindBoostIfEqual }
func (BoostIfEqual) sealed() {}

// FieldValueBoost adds Weight * Curve(value of Field), using Missing when absent.
type FieldValueBoost struct {
	Field   string
	Weight  float64
	Missing float64
	Curve   Curve
}

// Kind implements Function.
func (FieldValueBoost) Kind() Kind { return KindFieldValueBoost }
func (FieldValueBoost) sealed() {}

// GeoProximityDecay adds Weight scaled by a Gaussian of the distance to Origin.
// Within FullScoreRadius meters the full weight applies; at FullScoreRadius+HalfScoreRadius
// half of it does.
type GeoProximityDecay struct {
	Field           string
	Origin          geo.Point
	FullScoreRadius float64
	HalfScoreRadius float64
	Weight          float64
}

// Kind implements Function.
func (GeoProximityDecay) Kind() Kind { return KindGeoProximityDecay }
func (GeoProximityDecay) sealed() {}

// Evaluate computes fn's contribution for a document source.
// Used by gateways that score in process rather than delegating to the index engine.
func Evaluate(fn Function, source map[string]any) float64 {
	switch f := fn.(type) {
	case BoostIfEqual:
		if equal(source[f.Field], f.Value) {
			return f.Weight
		}
		return 0
	case FieldValueBoost:
		x, ok := number(source[f.Field])
		if !ok {
			x = f.Missing
		}
		return f.Weight * f.Curve.Apply(x)
	case GeoProximityDecay:
		p, ok := point(source[f.Field])
		if !ok {
			return 0
		}
		return f.Weight * geo.GaussDecay(f.Origin.Distance(p), f.FullScoreRadius, f.HalfScoreRadius)
	default:
		panic(fmt.Sprintf("scoring: unknown function %T", fn))
	}
}

func equal(v, want any) bool {
	switch w := want.(type) {
	case bool:
		b, ok := v.(bool)
		return ok && b == w
	case string:
		switch s := v.(type) {
		case string:
			return s == w
		case []any:
			for _, e := range s {
				if es, ok := e.(string); ok && es == w {
					return true
				}
			}
		case []string:
			for _, e := range s {
				if e == w {
					return true
				}
			}
		}
		return false
	default:
		a, aok := number(v)
		b, bok := number(want)
		return aok && bok && a == b
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func point(v any) (geo.Point, bool) {
	switch p := v.(type) {
	case geo.Point:
		return p, true
	case *geo.Point:
		if p == nil {
			return geo.Point{}, false
		}
		return *p, true
	case map[string]any:
		lat, ok1 := number(p["lat"])
		lon, ok2 := number(p["lon"])
		return geo.Point{Lat: lat, Lon: lon}, ok1 && ok2
	default:
		return geo.Point{}, false
	}
}
