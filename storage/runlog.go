package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"iv_housing/models"
)

// RunLog keeps the history of search invocations. It never stores listings.
type RunLog interface {
	CreateRun(ctx context.Context, run *models.SearchRun) error
	FinishRun(ctx context.Context, run *models.SearchRun) error
	Log(ctx context.Context, runID uuid.UUID, level models.LogLevel, message string) error
	RecentRuns(ctx context.Context, limit int) ([]models.SearchRun, error)
	RunLogs(ctx context.Context, runID uuid.UUID) ([]models.SearchLog, error)
	Close() error
}

// Open picks a backend from the DSN: postgres:// or postgresql:// URLs go to
// Postgres, anything else is treated as a SQLite file path. An empty DSN
// returns a nil RunLog and no error.
func Open(ctx context.Context, dsn string) (RunLog, error) {
	switch {
	case dsn == "":
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresRunLog(ctx, dsn)
	default:
		return NewSQLiteRunLog(dsn)
	}
}

// MaskDSN hides the password of a connection string for logging.
func MaskDSN(dsn string) string {
	start := strings.Index(dsn, "://")
	if start < 0 {
		return dsn
	}
	start += 3

	at := strings.LastIndex(dsn, "@")
	if at < start {
		return dsn
	}
	colon := strings.Index(dsn[start:at], ":")
	if colon < 0 {
		return dsn
	}
	colon += start
	return dsn[:colon+1] + "****" + dsn[at:]
}
