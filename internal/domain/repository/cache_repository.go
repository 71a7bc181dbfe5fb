package repository

import (
	"context"
	"time"

	"github.com/perception-map/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetCells получает ячейки года из кеша, nil при промахе
	GetCells(ctx context.Context, year int) ([]domain.GeoCell, error)

	// SetCells сохраняет ячейки года в кеше
	SetCells(ctx context.Context, year int, cells []domain.GeoCell, ttl time.Duration) error

	// DeleteCells удаляет ячейки года из кеша
	DeleteCells(ctx context.Context, year int) error
}
