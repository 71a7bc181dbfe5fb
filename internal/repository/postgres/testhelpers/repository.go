package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/perception-map/internal/domain/repository"
	"github.com/perception-map/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewReportRepositoryForTest creates a render report repository with test database and logger
func NewReportRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ReportRepository {
	return postgres.NewReportRepository(NewDBForTest(db, logger))
}
