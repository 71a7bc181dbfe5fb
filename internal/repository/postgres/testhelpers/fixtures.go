package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReportFixture is a minimal render_reports row
type ReportFixture struct {
	Year      int
	ViewMode  string
	Drawn     int
	CreatedAt time.Time
}

// SeedReports inserts fixture rows directly, bypassing the repository
func SeedReports(db *sql.DB, fixtures []ReportFixture) error {
	for i, f := range fixtures {
		_, err := db.ExecContext(context.Background(), `
			INSERT INTO render_reports (year, view_mode, total_cells, drawn, viewport, created_at)
			VALUES ($1, $2, $3, $3, '{"center":{"lat":45.18,"lon":5.72},"zoom":13,"fallback":false}', $4)
		`, f.Year, f.ViewMode, f.Drawn, f.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed report %d: %w", i, err)
		}
	}
	return nil
}
