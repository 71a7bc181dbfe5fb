package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/domain/repository"
	"github.com/perception-map/internal/overlay"
	apperrors "github.com/perception-map/internal/pkg/errors"
	"github.com/perception-map/internal/pkg/metrics"
	"github.com/perception-map/internal/usecase/dto"
)

// DefaultOverlayContainer - размер контейнера для отрисовки без сессии
var DefaultOverlayContainer = domain.Container{Width: 1024, Height: 768}

// MapConfig - параметры MapUseCase
type MapConfig struct {
	Years         []int
	CellsCacheTTL time.Duration
	Renderer      overlay.Config
}

// MapUseCase загружает ячейки года и рисует их без сохранения состояния
type MapUseCase struct {
	source     repository.CellSource
	cacheRepo  repository.CacheRepository
	reportRepo repository.ReportRepository
	cfg        MapConfig
	years      map[int]struct{}
	logger     *zap.Logger
}

// NewMapUseCase создает новый экземпляр MapUseCase. cacheRepo и reportRepo
// могут быть nil: тогда кеш и журнал не используются.
func NewMapUseCase(
	source repository.CellSource,
	cacheRepo repository.CacheRepository,
	reportRepo repository.ReportRepository,
	cfg MapConfig,
	logger *zap.Logger,
) *MapUseCase {
	years := make(map[int]struct{}, len(cfg.Years))
	sorted := make([]int, 0, len(cfg.Years))
	for _, y := range cfg.Years {
		if _, dup := years[y]; dup {
			continue
		}
		years[y] = struct{}{}
		sorted = append(sorted, y)
	}
	sort.Ints(sorted)
	cfg.Years = sorted

	return &MapUseCase{
		source:     source,
		cacheRepo:  cacheRepo,
		reportRepo: reportRepo,
		cfg:        cfg,
		years:      years,
		logger:     logger,
	}
}

// Years возвращает доступные годы; по умолчанию выбирается последний
func (uc *MapUseCase) Years() dto.YearsResponse {
	resp := dto.YearsResponse{Years: append([]int(nil), uc.cfg.Years...)}
	if n := len(uc.cfg.Years); n > 0 {
		resp.Default = uc.cfg.Years[n-1]
	}
	return resp
}

// ValidateYear проверяет, что год есть в списке доступных
func (uc *MapUseCase) ValidateYear(year int) error {
	if _, ok := uc.years[year]; !ok {
		return apperrors.ErrInvalidYear.WithDetails(map[string]interface{}{
			"year":      year,
			"available": uc.cfg.Years,
		})
	}
	return nil
}

// RendererConfig - настройки отрисовки для новых рендереров
func (uc *MapUseCase) RendererConfig() overlay.Config {
	return uc.cfg.Renderer
}

// GetCells возвращает ячейки года, используя кеш когда возможно.
// Год без данных возвращает domain.ErrNoData.
func (uc *MapUseCase) GetCells(ctx context.Context, year int) ([]domain.GeoCell, error) {
	// 1. Проверяем кеш
	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetCells(ctx, year)
		if err != nil {
			uc.logger.Warn("Failed to get cells from cache", zap.Int("year", year), zap.Error(err))
		}
		if cached != nil {
			metrics.RecordCacheHit()
			uc.logger.Debug("Cells fetched from cache", zap.Int("year", year), zap.Int("cells", len(cached)))
			return cached, nil
		}
		metrics.RecordCacheMiss()
	}

	// 2. Запрашиваем бэкенд
	return uc.fetchAndCache(ctx, year)
}

// RefreshYear сбрасывает кеш года и загружает его заново. Возвращает число ячеек.
func (uc *MapUseCase) RefreshYear(ctx context.Context, year int) (int, error) {
	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.DeleteCells(ctx, year); err != nil {
			uc.logger.Warn("Failed to invalidate cells cache", zap.Int("year", year), zap.Error(err))
		}
	}

	cells, err := uc.fetchAndCache(ctx, year)
	if errors.Is(err, domain.ErrNoData) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(cells), nil
}

func (uc *MapUseCase) fetchAndCache(ctx context.Context, year int) ([]domain.GeoCell, error) {
	cells, err := uc.source.FetchYear(ctx, year)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			uc.logger.Info("No map data for year", zap.Int("year", year))
		}
		return nil, err
	}
	if cells == nil {
		cells = []domain.GeoCell{}
	}

	// 3. Кешируем; ошибка кеша не мешает вернуть данные
	if uc.cacheRepo != nil && uc.cfg.CellsCacheTTL > 0 {
		if err := uc.cacheRepo.SetCells(ctx, year, cells, uc.cfg.CellsCacheTTL); err != nil {
			uc.logger.Warn("Failed to cache cells", zap.Int("year", year), zap.Error(err))
		}
	}
	return cells, nil
}

// RenderOverlay рисует год один раз на временной поверхности и возвращает GeoJSON
func (uc *MapUseCase) RenderOverlay(ctx context.Context, req dto.OverlayRequest) (*dto.OverlayResponse, error) {
	if err := uc.ValidateYear(req.Year); err != nil {
		return nil, err
	}
	viewMode, err := ParseViewMode(req.ViewMode)
	if err != nil {
		return nil, err
	}
	container := domain.Container{Width: req.Width, Height: req.Height}
	if !container.Valid() {
		container = DefaultOverlayContainer
	}

	noData := false
	cells, err := uc.GetCells(ctx, req.Year)
	switch {
	case errors.Is(err, domain.ErrNoData):
		noData = true
	case err != nil:
		return nil, BackendError(err)
	}

	renderer := overlay.NewRenderer(uc.cfg.Renderer, nil, nil, uc.logger)
	if err := renderer.Mount(container); err != nil {
		return nil, fmt.Errorf("mount renderer: %w", err)
	}
	defer func() { _ = renderer.Unmount() }()

	report, err := renderer.Render(cells, viewMode)
	if err != nil {
		return nil, fmt.Errorf("render overlay: %w", err)
	}
	report.Year = req.Year
	fc := renderer.Surface().FeatureCollection()

	uc.SaveReport(ctx, report)

	return &dto.OverlayResponse{
		Year:     req.Year,
		ViewMode: viewMode,
		NoData:   noData,
		Overlay:  fc,
		Report:   report,
	}, nil
}

// SaveReport пишет отчет в журнал; ошибка только логируется
func (uc *MapUseCase) SaveReport(ctx context.Context, report *domain.RenderReport) {
	if uc.reportRepo == nil || report == nil {
		return
	}
	if err := uc.reportRepo.Save(ctx, report); err != nil {
		uc.logger.Warn("Failed to save render report",
			zap.Int("year", report.Year),
			zap.Error(err))
	}
}

// ListReports возвращает последние записи журнала отрисовки
func (uc *MapUseCase) ListReports(ctx context.Context, req dto.ReportsRequest) ([]*domain.RenderReport, error) {
	if uc.reportRepo == nil {
		return []*domain.RenderReport{}, nil
	}
	reports, err := uc.reportRepo.ListByYear(ctx, req.Year, req.Limit)
	if err != nil {
		return nil, apperrors.ErrDatabaseError
	}
	return reports, nil
}

// ParseViewMode разбирает режим отображения; пустая строка - composite
func ParseViewMode(s string) (domain.ViewMode, error) {
	if s == "" {
		return domain.ViewModeComposite, nil
	}
	mode := domain.ViewMode(s)
	if !mode.IsValid() {
		return "", apperrors.ErrInvalidViewMode
	}
	return mode, nil
}

// BackendError переводит ошибку источника ячеек в ошибку API
func BackendError(err error) *apperrors.AppError {
	var backendErr *domain.BackendError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return apperrors.ErrUnauthorized
	case errors.As(err, &backendErr):
		return apperrors.ErrBackendUnavailable.WithMessage(backendErr.Message)
	default:
		return apperrors.ErrBackendUnavailable
	}
}
