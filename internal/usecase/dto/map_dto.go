package dto

import (
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/navigator"
	"github.com/perception-map/internal/overlay"
)

// YearsResponse - доступные годы и год по умолчанию
type YearsResponse struct {
	Years   []int `json:"years"`
	Default int   `json:"default"`
}

// OverlayRequest - разовая отрисовка года без сессии
type OverlayRequest struct {
	Year     int    `json:"year" validate:"required,min=1900,max=2100"`
	ViewMode string `json:"view_mode" query:"view" validate:"omitempty,oneof=composite individual"`
	Width    int    `json:"width" query:"width" validate:"omitempty,min=1,max=8192"`
	Height   int    `json:"height" query:"height" validate:"omitempty,min=1,max=8192"`
}

// OverlayResponse - слой ячеек в GeoJSON и итог отрисовки
type OverlayResponse struct {
	Year     int                        `json:"year"`
	ViewMode domain.ViewMode            `json:"view_mode"`
	NoData   bool                       `json:"no_data"`
	Overlay  *geojson.FeatureCollection `json:"overlay" swaggertype:"object"`
	Report   *domain.RenderReport       `json:"report"`
}

// ReportsRequest - фильтр журнала отрисовки
type ReportsRequest struct {
	Year  int `query:"year" validate:"omitempty,min=1900,max=2100"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// CreateSessionRequest - размеры контейнера карты; год и режим необязательны
type CreateSessionRequest struct {
	Width    int    `json:"width" validate:"required,min=1,max=8192"`
	Height   int    `json:"height" validate:"required,min=1,max=8192"`
	Year     int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	ViewMode string `json:"view_mode,omitempty" validate:"omitempty,oneof=composite individual"`
}

// SelectYearRequest - выбор года в сессии
type SelectYearRequest struct {
	Year     int    `json:"year" validate:"required,min=1900,max=2100"`
	ViewMode string `json:"view_mode,omitempty" validate:"omitempty,oneof=composite individual"`
}

// ViewModeRequest - смена режима отображения
type ViewModeRequest struct {
	ViewMode string `json:"view_mode" validate:"required,oneof=composite individual"`
}

// SessionResponse - снимок состояния сессии карты
type SessionResponse struct {
	ID        string                     `json:"id"`
	State     string                     `json:"state"`
	Year      int                        `json:"year"`
	ViewMode  domain.ViewMode            `json:"view_mode"`
	Message   string                     `json:"message,omitempty"`
	Container domain.Container           `json:"container"`
	Viewport  *domain.Viewport           `json:"viewport,omitempty"`
	Overlay   *geojson.FeatureCollection `json:"overlay,omitempty" swaggertype:"object"`
	Report    *domain.RenderReport       `json:"report,omitempty"`
	Popup     *overlay.Popup             `json:"popup,omitempty"`
	Detail    *navigator.DetailView      `json:"detail,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}
