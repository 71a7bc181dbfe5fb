// Package overlay draws scored geo cells as interactive rectangles on a map surface.
package overlay

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/geo"
	"github.com/perception-map/internal/pkg/metrics"
	"github.com/perception-map/internal/scoring"
)

// State of a renderer's surface lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

var (
	ErrNotMounted    = errors.New("renderer is not mounted")
	ErrTornDown      = errors.New("renderer has been torn down")
	ErrInvalidLayout = errors.New("container has no pixel size")
)

const (
	outlineColor  = "black"
	outlineWeight = 1
	fillOpacity   = 0.7
)

// SurfaceFactory creates the base map surface for a mounted container.
type SurfaceFactory func(container domain.Container, initial domain.Viewport) (Surface, error)

// Config holds the renderer's view defaults.
type Config struct {
	DefaultView domain.Viewport
	CellEdge    float64
	FitPadding  int
}

// DefaultConfig frames Grenoble with the default cell edge and 50px fit padding.
func DefaultConfig() Config {
	return Config{
		DefaultView: geo.DefaultView,
		CellEdge:    geo.DefaultCellEdge,
		FitPadding:  50,
	}
}

// Renderer exclusively owns one map surface between Mount and Unmount.
// It is not safe for concurrent use; callers serialise access.
type Renderer struct {
	cfg        Config
	newSurface SurfaceFactory
	onSelect   func(domain.GeoCell)
	logger     *zap.Logger

	state     State
	container domain.Container
	surface   Surface
	// cells by shape id for the current draw pass
	drawn     map[ShapeID]domain.GeoCell
}

// NewRenderer creates an unmounted renderer. onSelect receives the cell whose
// shape was clicked; it may be nil.
func NewRenderer(cfg Config, factory SurfaceFactory, onSelect func(domain.GeoCell), logger *zap.Logger) *Renderer {
	if factory == nil {
		factory = NewVectorSurface
	}
	if cfg.CellEdge <= 0 {
		cfg.CellEdge = geo.DefaultCellEdge
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		cfg:        cfg,
		newSurface: factory,
		onSelect:   onSelect,
		logger:     logger,
	}
}

func (r *Renderer) State() State {
	return r.state
}

// Surface returns the owned surface, or nil unless the renderer is Ready.
func (r *Renderer) Surface() Surface {
	if r.state != StateReady {
		return nil
	}
	return r.surface
}

// Mount creates the base surface at the default viewport. Mounting a Ready
// renderer again is a no-op and never creates a second surface.
func (r *Renderer) Mount(container domain.Container) error {
	switch r.state {
	case StateReady:
		return nil
	case StateTornDown:
		return ErrTornDown
	}
	if !container.Valid() {
		return fmt.Errorf("%w: %dx%d", ErrInvalidLayout, container.Width, container.Height)
	}

	surface, err := r.newSurface(container, r.cfg.DefaultView)
	if err != nil {
		return fmt.Errorf("create map surface: %w", err)
	}

	r.surface = surface
	r.container = container
	r.state = StateReady
	r.logger.Debug("Map surface created",
		zap.Int("width", container.Width),
		zap.Int("height", container.Height))
	return nil
}

// Unmount releases the surface and every handler attached to it.
func (r *Renderer) Unmount() error {
	if r.state != StateReady {
		r.state = StateTornDown
		return nil
	}

	err := r.surface.Close()
	r.surface = nil
	r.drawn = nil
	r.state = StateTornDown
	if err != nil {
		return fmt.Errorf("close map surface: %w", err)
	}
	r.logger.Debug("Map surface released")
	return nil
}

// Render clears every shape and redraws cells from scratch, then fits the view.
// A cell whose geometry or drawing fails is logged and skipped; it never aborts
// the pass. viewMode does not change the drawing algorithm.
func (r *Renderer) Render(cells []domain.GeoCell, viewMode domain.ViewMode) (*domain.RenderReport, error) {
	switch r.state {
	case StateUninitialized:
		return nil, ErrNotMounted
	case StateTornDown:
		return nil, ErrTornDown
	}

	start := time.Now()
	if err := r.surface.ClearShapes(); err != nil {
		return nil, fmt.Errorf("clear shapes: %w", err)
	}
	r.drawn = make(map[ShapeID]domain.GeoCell, len(cells))

	report := &domain.RenderReport{
		ViewMode:   viewMode,
		TotalCells: len(cells),
		Skipped:    []domain.SkippedCell{},
	}
	skippedByKind := map[string]int{}
	bounds := make([]orb.Bound, 0, len(cells))

	for _, cell := range cells {
		b, err := r.drawCell(cell)
		if err != nil {
			kind := domain.SkipDraw
			var gerr *geo.GeometryError
			if errors.As(err, &gerr) {
				kind = domain.SkipGeometry
			}
			r.logger.Warn("Skipping geo cell",
				zap.Int("cell_index", cell.Index),
				zap.String("kind", string(kind)),
				zap.Error(err))
			report.Skipped = append(report.Skipped, domain.SkippedCell{
				Index:  cell.Index,
				Kind:   kind,
				Reason: err.Error(),
			})
			skippedByKind[string(kind)]++
			continue
		}
		bounds = append(bounds, b)
	}

	report.Drawn = len(bounds)
	report.Empty = report.Drawn == 0
	report.Viewport = geo.FitViewport(bounds, r.container, geo.FitOptions{
		PaddingPx: r.cfg.FitPadding,
		Fallback:  r.cfg.DefaultView,
	})
	if err := r.surface.SetView(report.Viewport); err != nil {
		return nil, fmt.Errorf("set view: %w", err)
	}

	metrics.RecordRender(string(viewMode), report.Drawn, skippedByKind, time.Since(start))
	r.logger.Debug("Overlay rendered",
		zap.Int("total", report.TotalCells),
		zap.Int("drawn", report.Drawn),
		zap.Int("skipped", len(report.Skipped)),
		zap.Bool("fallback_view", report.Viewport.Fallback))

	return report, nil
}

// drawCell normalizes and draws one cell. Panics from the surface are turned
// into a DrawError for this cell only.
func (r *Renderer) drawCell(cell domain.GeoCell) (b orb.Bound, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &DrawError{Reason: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	b, err = geo.NormalizeWithEdge(cell.Coords, r.cfg.CellEdge)
	if err != nil {
		return orb.Bound{}, err
	}

	color := scoring.ColorForCellScore(cell.Score)
	style := Style{
		StrokeColor:  outlineColor,
		StrokeWeight: outlineWeight,
		FillColor:    color.String(),
		FillOpacity:  fillOpacity,
	}
	props := map[string]interface{}{
		"cell_index":  cell.Index,
		"score":       cell.Score,
		"band":        string(scoring.SeverityBand(cell.Score)),
		"fill_hex":    color.Hex(),
		"evaluations": len(cell.Evaluations),
	}

	selected := cell
	handlers := Handlers{
		Hover: func() []string {
			return HoverLines(selected)
		},
		Click: func() {
			if r.onSelect != nil {
				r.onSelect(selected)
			}
		},
	}

	id, err := r.surface.AddRectangle(b, style, props, handlers)
	if err != nil {
		return orb.Bound{}, err
	}
	r.drawn[id] = cell
	return b, nil
}

// HoverLines is the floating label shown over a hovered cell.
func HoverLines(cell domain.GeoCell) []string {
	return []string{
		"Score: " + strconv.FormatFloat(cell.Score, 'f', -1, 64),
		fmt.Sprintf("Square #%d", cell.Index),
		"(click for details)",
	}
}

// Cell returns the cell drawn as shape id in the current pass.
func (r *Renderer) Cell(id ShapeID) (domain.GeoCell, bool) {
	if r.state != StateReady {
		return domain.GeoCell{}, false
	}
	cell, ok := r.drawn[id]
	return cell, ok
}
