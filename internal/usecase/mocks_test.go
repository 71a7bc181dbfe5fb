package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/perception-map/internal/domain"
)

type MockCellSource struct {
	mock.Mock
}

func (m *MockCellSource) FetchYear(ctx context.Context, year int) ([]domain.GeoCell, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeoCell), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetCells(ctx context.Context, year int) ([]domain.GeoCell, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GeoCell), args.Error(1)
}

func (m *MockCacheRepository) SetCells(ctx context.Context, year int, cells []domain.GeoCell, ttl time.Duration) error {
	args := m.Called(ctx, year, cells, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteCells(ctx context.Context, year int) error {
	args := m.Called(ctx, year)
	return args.Error(0)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Save(ctx context.Context, report *domain.RenderReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) ListByYear(ctx context.Context, year, limit int) ([]*domain.RenderReport, error) {
	args := m.Called(ctx, year, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RenderReport), args.Error(1)
}
