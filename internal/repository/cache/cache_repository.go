package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/domain/repository"
)

type cacheRepository struct {
	client redis.Cmdable
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

// NewCacheRepositoryWithClient - для тестов и общего клиента со стримами
func NewCacheRepositoryWithClient(client redis.Cmdable, logger *zap.Logger) repository.CacheRepository {
	return &cacheRepository{
		client: client,
		logger: logger,
	}
}

// CellsKey - ключ кеша ячеек года
func CellsKey(year int) string {
	return fmt.Sprintf("cells:%d", year)
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetCells получает ячейки года из кеша. Пустой набор тоже кешируется,
// поэтому промах - это nil, а год без данных - пустой срез.
func (r *cacheRepository) GetCells(ctx context.Context, year int) ([]domain.GeoCell, error) {
	data, err := r.Get(ctx, CellsKey(year))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	cells := []domain.GeoCell{}
	if err := json.Unmarshal(data, &cells); err != nil {
		r.logger.Error("Failed to unmarshal cells from cache", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("unmarshal cells: %w", err)
	}
	return cells, nil
}

// SetCells сохраняет ячейки года в кеше
func (r *cacheRepository) SetCells(ctx context.Context, year int, cells []domain.GeoCell, ttl time.Duration) error {
	if cells == nil {
		cells = []domain.GeoCell{}
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("marshal cells: %w", err)
	}
	return r.Set(ctx, CellsKey(year), data, ttl)
}

func (r *cacheRepository) DeleteCells(ctx context.Context, year int) error {
	return r.Delete(ctx, CellsKey(year))
}
