package repository

import (
	"context"

	"github.com/perception-map/internal/domain"
)

// CellSource - источник агрегированных ячеек за год
type CellSource interface {
	// FetchYear возвращает ячейки за год. Нет данных - domain.ErrNoData,
	// отказ в доступе - domain.ErrUnauthorized.
	FetchYear(ctx context.Context, year int) ([]domain.GeoCell, error)
}
