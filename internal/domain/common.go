package domain

import "time"

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// Container - размеры DOM-контейнера карты в пикселях
type Container struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the container has a defined pixel size.
func (c Container) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// Viewport - видимая область карты
type Viewport struct {
	Center Point        `json:"center"`
	Zoom   int          `json:"zoom"`
	Bounds *BoundingBox `json:"bounds,omitempty"`
	// Fallback is set when no drawn shape could be fitted and the default view was used.
	Fallback bool `json:"fallback"`
}

// SkipKind - причина пропуска ячейки при отрисовке
type SkipKind string

const (
	SkipGeometry SkipKind = "geometry"
	SkipDraw     SkipKind = "draw"
	SkipDecode   SkipKind = "decode"
)

// SkippedCell - диагностическая запись о пропущенной ячейке
type SkippedCell struct {
	Index  int      `json:"index"`
	Kind   SkipKind `json:"kind"`
	Reason string   `json:"reason"`
}

// RenderReport - итог одного прохода отрисовки
type RenderReport struct {
	ID         int64         `json:"id,omitempty" db:"id"`
	SessionID  string        `json:"session_id,omitempty" db:"session_id"`
	Year       int           `json:"year" db:"year"`
	ViewMode   ViewMode      `json:"view_mode" db:"view_mode"`
	TotalCells int           `json:"total_cells" db:"total_cells"`
	Drawn      int           `json:"drawn" db:"drawn"`
	Skipped    []SkippedCell `json:"skipped" db:"-"`
	Viewport   Viewport      `json:"viewport" db:"-"`
	Empty      bool          `json:"empty" db:"empty"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// SkippedIndices returns the indices of every skipped cell in draw order.
func (r *RenderReport) SkippedIndices() []int64 {
	out := make([]int64, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		out = append(out, int64(s.Index))
	}
	return out
}
