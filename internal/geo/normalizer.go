// Package geo converts the loosely shaped coordinate payloads of the evaluation
// backend into canonical bounding rectangles and fits map viewports around them.
package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/perception-map/internal/pkg/utils"
)

// DefaultCellEdge is the side, in degrees, of the square drawn around a single point.
const DefaultCellEdge = 0.002

// ShapeKind identifies which coordinate shape a payload was recognised as.
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota + 1
	ShapeCorner
	ShapePoint
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRectangle:
		return "rectangle"
	case ShapeCorner:
		return "corner"
	case ShapePoint:
		return "point"
	default:
		return "unknown"
	}
}

// Coords is the parsed form of a cell's raw coordinates. A and B are stored as
// orb points, i.e. [lng, lat]. B is only meaningful for ShapeRectangle.
type Coords struct {
	Kind ShapeKind
	A    orb.Point
	B    orb.Point
}

// GeometryError reports a coordinate payload that cannot produce a rectangle.
type GeometryError struct {
	Reason string
	Raw    string
}

func (e *GeometryError) Error() string {
	if e.Raw == "" {
		return "geometry: " + e.Reason
	}
	return fmt.Sprintf("geometry: %s (coords=%s)", e.Reason, e.Raw)
}

func geometryErr(raw json.RawMessage, format string, args ...interface{}) *GeometryError {
	s := string(raw)
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return &GeometryError{Reason: fmt.Sprintf(format, args...), Raw: s}
}

// ParseCoords recognises the coordinate shape of raw. Shapes are tried in order:
// two-corner object, single-corner object, lat/lng (or latitude/longitude) object,
// then a [lat, lng, ...] array. Anything else is a *GeometryError.
func ParseCoords(raw json.RawMessage) (Coords, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Coords{}, geometryErr(raw, "coordinates missing")
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Coords{}, geometryErr(raw, "malformed object: %v", err)
		}
		return parseObject(raw, obj)
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return Coords{}, geometryErr(raw, "malformed array: %v", err)
		}
		if len(arr) < 2 {
			return Coords{}, geometryErr(raw, "array needs at least 2 values, got %d", len(arr))
		}
		lat, okLat := number(arr[0])
		lng, okLng := number(arr[1])
		if !okLat || !okLng {
			return Coords{}, geometryErr(raw, "array values are not numeric")
		}
		return point(raw, ShapePoint, lat, lng)
	default:
		return Coords{}, geometryErr(raw, "unsupported coordinates type")
	}
}

func parseObject(raw json.RawMessage, obj map[string]json.RawMessage) (Coords, error) {
	lat1, hasLat1 := field(obj, "lat_1")
	lng1, hasLng1 := field(obj, "lng_1")
	if hasLat1 && hasLng1 {
		lat2, hasLat2 := field(obj, "lat_2")
		lng2, hasLng2 := field(obj, "lng_2")
		if hasLat2 && hasLng2 {
			a, err := point(raw, ShapeRectangle, lat1, lng1)
			if err != nil {
				return Coords{}, err
			}
			b, err := point(raw, ShapeRectangle, lat2, lng2)
			if err != nil {
				return Coords{}, err
			}
			return Coords{Kind: ShapeRectangle, A: a.A, B: b.A}, nil
		}
		return point(raw, ShapeCorner, lat1, lng1)
	}

	if lat, ok := field(obj, "lat"); ok {
		if lng, ok := field(obj, "lng"); ok {
			return point(raw, ShapePoint, lat, lng)
		}
	}
	if lat, ok := field(obj, "latitude"); ok {
		if lng, ok := field(obj, "longitude"); ok {
			return point(raw, ShapePoint, lat, lng)
		}
	}

	return Coords{}, geometryErr(raw, "unrecognized coordinate object")
}

func point(raw json.RawMessage, kind ShapeKind, lat, lng float64) (Coords, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Coords{}, geometryErr(raw, "non-finite coordinate")
	}
	if !utils.ValidateCoordinates(lat, lng) {
		return Coords{}, geometryErr(raw, "coordinate out of range lat=%g lng=%g", lat, lng)
	}
	p := orb.Point{lng, lat}
	return Coords{Kind: kind, A: p, B: p}, nil
}

// field returns a numeric member of obj. Null and non-numeric members count as absent.
func field(obj map[string]json.RawMessage, key string) (float64, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	return number(v)
}

func number(v json.RawMessage) (float64, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return 0, false
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Bounds converts the parsed shape into a rectangle whose Min is the south-west
// corner and Max the north-east corner. Corner and point shapes are expanded to a
// square of side edge centred on the point.
func (c Coords) Bounds(edge float64) (orb.Bound, error) {
	switch c.Kind {
	case ShapeRectangle:
		b := orb.Bound{Min: c.A, Max: c.A}.Extend(c.B)
		if b.Min.Lat() == b.Max.Lat() || b.Min.Lon() == b.Max.Lon() {
			return orb.Bound{}, &GeometryError{Reason: fmt.Sprintf("degenerate rectangle %v-%v", b.Min, b.Max)}
		}
		return b, nil
	case ShapeCorner, ShapePoint:
		if edge <= 0 || math.IsNaN(edge) {
			return orb.Bound{}, &GeometryError{Reason: fmt.Sprintf("invalid square edge %g", edge)}
		}
		half := edge / 2
		return orb.Bound{
			Min: orb.Point{c.A.Lon() - half, c.A.Lat() - half},
			Max: orb.Point{c.A.Lon() + half, c.A.Lat() + half},
		}, nil
	default:
		return orb.Bound{}, &GeometryError{Reason: "coordinates not parsed"}
	}
}

// Normalize parses raw and returns its rectangle using the default square edge.
func Normalize(raw json.RawMessage) (orb.Bound, error) {
	return NormalizeWithEdge(raw, DefaultCellEdge)
}

// NormalizeWithEdge is Normalize with an explicit square edge for point shapes.
func NormalizeWithEdge(raw json.RawMessage, edge float64) (orb.Bound, error) {
	c, err := ParseCoords(raw)
	if err != nil {
		return orb.Bound{}, err
	}
	return c.Bounds(edge)
}

// Centroid is the arithmetic mean of the two corners.
func Centroid(b orb.Bound) orb.Point {
	return orb.Point{(b.Min.Lon() + b.Max.Lon()) / 2, (b.Min.Lat() + b.Max.Lat()) / 2}
}
