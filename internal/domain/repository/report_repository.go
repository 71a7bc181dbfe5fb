package repository

import (
	"context"

	"github.com/perception-map/internal/domain"
)

// ReportRepository - журнал проходов отрисовки
type ReportRepository interface {
	// Save сохраняет отчет и заполняет его ID и CreatedAt
	Save(ctx context.Context, report *domain.RenderReport) error

	// ListByYear возвращает последние отчеты; year == 0 - за все годы
	ListByYear(ctx context.Context, year, limit int) ([]*domain.RenderReport, error)
}
