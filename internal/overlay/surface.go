package overlay

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/perception-map/internal/domain"
)

var (
	// ErrSurfaceClosed is returned by every surface call after Close.
	ErrSurfaceClosed = errors.New("map surface closed")
	// ErrShapeNotFound is returned when an interaction targets an unknown shape.
	ErrShapeNotFound = errors.New("shape not found")
)

// DrawError reports a shape the surface refused to draw.
type DrawError struct {
	Reason string
}

func (e *DrawError) Error() string {
	return "draw: " + e.Reason
}

// ShapeID identifies a drawn shape until the next ClearShapes.
type ShapeID int

// Style is the outline and fill of a drawn rectangle.
type Style struct {
	StrokeColor  string  `json:"stroke"`
	StrokeWeight int     `json:"stroke-width"`
	FillColor    string  `json:"fill"`
	FillOpacity  float64 `json:"fill-opacity"`
}

// Popup is the small floating label shown while a shape is hovered.
type Popup struct {
	ShapeID ShapeID      `json:"shape_id"`
	Lines   []string     `json:"lines"`
	Anchor  domain.Point `json:"anchor"`
}

// Handlers are the interaction callbacks attached to a shape.
type Handlers struct {
	Hover func() []string
	Click func()
}

// Surface is the base map a renderer draws on. A surface is owned by exactly one
// renderer and is unusable after Close.
type Surface interface {
	AddRectangle(b orb.Bound, style Style, props map[string]interface{}, h Handlers) (ShapeID, error)
	ClearShapes() error
	SetView(vp domain.Viewport) error
	View() domain.Viewport
	ShapeCount() int
	Hover(id ShapeID) (*Popup, error)
	Leave(id ShapeID) error
	Click(id ShapeID) error
	OpenPopup() *Popup
	FeatureCollection() *geojson.FeatureCollection
	Close() error
}

type shape struct {
	bound    orb.Bound
	style    Style
	props    map[string]interface{}
	handlers Handlers
}

// VectorSurface is an in-process surface whose shapes serialise to GeoJSON.
type VectorSurface struct {
	mu        sync.Mutex
	container domain.Container
	view      domain.Viewport
	shapes    []*shape
	popup     *Popup
	closed    bool
}

// NewVectorSurface creates a surface for a container of the given pixel size.
func NewVectorSurface(container domain.Container, initial domain.Viewport) (Surface, error) {
	if !container.Valid() {
		return nil, fmt.Errorf("container has no pixel size (%dx%d)", container.Width, container.Height)
	}
	return &VectorSurface{container: container, view: initial}, nil
}

func (s *VectorSurface) AddRectangle(b orb.Bound, style Style, props map[string]interface{}, h Handlers) (ShapeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSurfaceClosed
	}
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &DrawError{Reason: "non-finite bounds"}
		}
	}
	if b.Min.Lat() >= b.Max.Lat() || b.Min.Lon() >= b.Max.Lon() {
		return 0, &DrawError{Reason: fmt.Sprintf("invalid bounds %v-%v", b.Min, b.Max)}
	}

	s.shapes = append(s.shapes, &shape{bound: b, style: style, props: props, handlers: h})
	return ShapeID(len(s.shapes) - 1), nil
}

func (s *VectorSurface) ClearShapes() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSurfaceClosed
	}
	s.shapes = nil
	s.popup = nil
	return nil
}

func (s *VectorSurface) SetView(vp domain.Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSurfaceClosed
	}
	s.view = vp
	return nil
}

func (s *VectorSurface) View() domain.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *VectorSurface) ShapeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shapes)
}

func (s *VectorSurface) lookup(id ShapeID) (*shape, error) {
	if s.closed {
		return nil, ErrSurfaceClosed
	}
	if id < 0 || int(id) >= len(s.shapes) {
		return nil, ErrShapeNotFound
	}
	return s.shapes[id], nil
}

// Hover opens the shape's popup at its centre, replacing any other open popup.
func (s *VectorSurface) Hover(id ShapeID) (*Popup, error) {
	s.mu.Lock()
	sh, err := s.lookup(id)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var lines []string
	if sh.handlers.Hover != nil {
		lines = sh.handlers.Hover()
	}
	c := sh.bound.Center()
	p := &Popup{ShapeID: id, Lines: lines, Anchor: domain.Point{Lat: c.Lat(), Lon: c.Lon()}}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSurfaceClosed
	}
	s.popup = p
	return p, nil
}

// Leave closes the popup of id if it is the one open.
func (s *VectorSurface) Leave(id ShapeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id); err != nil {
		return err
	}
	if s.popup != nil && s.popup.ShapeID == id {
		s.popup = nil
	}
	return nil
}

func (s *VectorSurface) Click(id ShapeID) error {
	s.mu.Lock()
	sh, err := s.lookup(id)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if sh.handlers.Click != nil {
		sh.handlers.Click()
	}
	return nil
}

func (s *VectorSurface) OpenPopup() *Popup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popup
}

// FeatureCollection renders every shape as a polygon feature carrying its style
// and properties, in draw order.
func (s *VectorSurface) FeatureCollection() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for i, sh := range s.shapes {
		f := geojson.NewFeature(sh.bound.ToPolygon())
		f.ID = i
		for k, v := range sh.props {
			f.Properties[k] = v
		}
		f.Properties["shape_id"] = i
		f.Properties["stroke"] = sh.style.StrokeColor
		f.Properties["stroke-width"] = sh.style.StrokeWeight
		f.Properties["fill"] = sh.style.FillColor
		f.Properties["fill-opacity"] = sh.style.FillOpacity
		fc.Append(f)
	}
	return fc
}

// Close releases the surface. Handlers are dropped so none can fire afterwards.
func (s *VectorSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.shapes = nil
	s.popup = nil
	return nil
}
