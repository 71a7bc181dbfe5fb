package geo

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/pkg/utils"
)

const (
	tileSize = 256.0
	// MaxZoom is the deepest zoom level the base tiles are published for.
	MaxZoom = 18
	MinZoom = 0
)

// Grenoble
var DefaultView = domain.Viewport{
	Center: domain.Point{Lat: 45.18, Lon: 5.72},
	Zoom:   13,
}

// FitOptions controls how a viewport is fitted around a set of rectangles.
type FitOptions struct {
	PaddingPx int
	Fallback  domain.Viewport
}

// FitViewport returns a viewport enclosing every bound in bounds on a container of
// the given pixel size. With no usable bounds it returns opts.Fallback marked as
// a fallback, never an empty viewport.
func FitViewport(bounds []orb.Bound, container domain.Container, opts FitOptions) domain.Viewport {
	union, ok := unionBounds(bounds)
	if !ok || !container.Valid() {
		fb := opts.Fallback
		fb.Bounds = nil
		fb.Fallback = true
		return fb
	}

	center := mercatorCenter(union)
	zoom := fitZoom(union, container, opts.PaddingPx)

	return domain.Viewport{
		Center: domain.Point{Lat: center.Lat(), Lon: center.Lon()},
		Zoom:   zoom,
		Bounds: &domain.BoundingBox{
			MinLat: union.Min.Lat(),
			MinLon: union.Min.Lon(),
			MaxLat: union.Max.Lat(),
			MaxLon: union.Max.Lon(),
		},
	}
}

func unionBounds(bounds []orb.Bound) (orb.Bound, bool) {
	var union orb.Bound
	found := false
	for _, b := range bounds {
		if !finiteBound(b) || b.Min.Lat() > b.Max.Lat() || b.Min.Lon() > b.Max.Lon() {
			continue
		}
		if !found {
			union = b
			found = true
			continue
		}
		union = union.Union(b)
	}
	return union, found
}

func finiteBound(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// fitZoom is the largest integer zoom at which union fits the padded container.
func fitZoom(union orb.Bound, container domain.Container, padding int) int {
	availW := float64(container.Width - 2*padding)
	availH := float64(container.Height - 2*padding)
	if availW <= 0 || availH <= 0 {
		availW, availH = float64(container.Width), float64(container.Height)
	}

	xFrac := (union.Max.Lon() - union.Min.Lon()) / 360
	yFrac := (mercatorY(union.Max.Lat()) - mercatorY(union.Min.Lat())) / (2 * math.Pi)

	zoom := float64(MaxZoom)
	if xFrac > 0 {
		zoom = math.Min(zoom, math.Log2(availW/(tileSize*xFrac)))
	}
	if yFrac > 0 {
		zoom = math.Min(zoom, math.Log2(availH/(tileSize*yFrac)))
	}

	z := int(math.Floor(zoom))
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// mercatorCenter is the centre of b in projected space, which is what a slippy
// map shows in the middle of the screen after fitting.
func mercatorCenter(b orb.Bound) orb.Point {
	y := (mercatorY(b.Min.Lat()) + mercatorY(b.Max.Lat())) / 2
	lat := (2*math.Atan(math.Exp(y)) - math.Pi/2) * 180 / math.Pi
	return orb.Point{(b.Min.Lon() + b.Max.Lon()) / 2, lat}
}

func mercatorY(lat float64) float64 {
	rad := utils.ClampMercatorLat(lat) * math.Pi / 180
	return math.Log(math.Tan(math.Pi/4 + rad/2))
}
