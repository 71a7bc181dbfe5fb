package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/domain/repository"
)

const (
	defaultReportsLimit = 50
	maxReportsLimit     = 500
)

type reportRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewReportRepository создает репозиторий журнала отрисовки
func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{
		db:     db,
		logger: db.logger,
	}
}

// reportRow - строка render_reports; skipped и viewport хранятся в JSONB
type reportRow struct {
	ID             int64         `db:"id"`
	SessionID      string        `db:"session_id"`
	Year           int           `db:"year"`
	ViewMode       string        `db:"view_mode"`
	TotalCells     int           `db:"total_cells"`
	Drawn          int           `db:"drawn"`
	SkippedIndices pq.Int64Array `db:"skipped_indices"`
	Skipped        []byte        `db:"skipped"`
	Viewport       []byte        `db:"viewport"`
	Empty          bool          `db:"empty"`
	CreatedAt      time.Time     `db:"created_at"`
}

func (r *reportRepository) Save(ctx context.Context, report *domain.RenderReport) error {
	skipped, err := json.Marshal(report.Skipped)
	if err != nil {
		return fmt.Errorf("marshal skipped cells: %w", err)
	}
	viewport, err := json.Marshal(report.Viewport)
	if err != nil {
		return fmt.Errorf("marshal viewport: %w", err)
	}

	query := `
		INSERT INTO render_reports
			(session_id, year, view_mode, total_cells, drawn, skipped_indices, skipped, viewport, empty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		report.SessionID,
		report.Year,
		string(report.ViewMode),
		report.TotalCells,
		report.Drawn,
		pq.Int64Array(report.SkippedIndices()),
		string(skipped),
		string(viewport),
		report.Empty,
	)
	if err := row.Scan(&report.ID, &report.CreatedAt); err != nil {
		r.logger.Error("failed to save render report",
			zap.Int("year", report.Year),
			zap.Error(err))
		return fmt.Errorf("insert render report: %w", err)
	}
	return nil
}

func (r *reportRepository) ListByYear(ctx context.Context, year, limit int) ([]*domain.RenderReport, error) {
	if limit <= 0 {
		limit = defaultReportsLimit
	}
	if limit > maxReportsLimit {
		limit = maxReportsLimit
	}

	query := `
		SELECT id, session_id, year, view_mode, total_cells, drawn,
		       skipped_indices, skipped, viewport, empty, created_at
		FROM render_reports
		WHERE ($1 = 0 OR year = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, year, limit); err != nil {
		r.logger.Error("failed to list render reports", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("select render reports: %w", err)
	}

	reports := make([]*domain.RenderReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (row reportRow) toDomain() (*domain.RenderReport, error) {
	report := &domain.RenderReport{
		ID:         row.ID,
		SessionID:  row.SessionID,
		Year:       row.Year,
		ViewMode:   domain.ViewMode(row.ViewMode),
		TotalCells: row.TotalCells,
		Drawn:      row.Drawn,
		Empty:      row.Empty,
		CreatedAt:  row.CreatedAt,
		Skipped:    []domain.SkippedCell{},
	}
	if len(row.Skipped) > 0 {
		if err := json.Unmarshal(row.Skipped, &report.Skipped); err != nil {
			return nil, fmt.Errorf("decode skipped cells of report %d: %w", row.ID, err)
		}
	}
	if err := json.Unmarshal(row.Viewport, &report.Viewport); err != nil {
		return nil, fmt.Errorf("decode viewport of report %d: %w", row.ID, err)
	}
	return report, nil
}
