package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"iv_housing/models"
)

type PostgresRunLog struct {
	pool *pgxpool.Pool
}

func NewPostgresRunLog(ctx context.Context, connString string) (*PostgresRunLog, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &PostgresRunLog{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresRunLog) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresRunLog) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS search_runs (
			id UUID PRIMARY KEY,
			source_id TEXT NOT NULL,
			url TEXT,
			criteria JSONB,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			status TEXT NOT NULL,
			listings_found INTEGER NOT NULL DEFAULT 0,
			listings_shown INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS search_logs (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID REFERENCES search_runs(id) ON DELETE CASCADE,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_search_logs_run ON search_logs(run_id, timestamp);
	`)
	return err
}

// =============================================================================
// Search Runs
// =============================================================================

func (s *PostgresRunLog) CreateRun(ctx context.Context, run *models.SearchRun) error {
	criteria, err := json.Marshal(run.Criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}

	query := `
		INSERT INTO search_runs (id, source_id, url, criteria, started_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.pool.Exec(ctx, query,
		run.ID, run.SourceID, run.URL, criteria, run.StartedAt, string(run.Status),
	)
	return err
}

func (s *PostgresRunLog) FinishRun(ctx context.Context, run *models.SearchRun) error {
	query := `
		UPDATE search_runs SET
			finished_at = $2, status = $3, listings_found = $4, listings_shown = $5
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.FinishedAt, string(run.Status), run.ListingsFound, run.ListingsShown,
	)
	return err
}

func (s *PostgresRunLog) RecentRuns(ctx context.Context, limit int) ([]models.SearchRun, error) {
	query := `
		SELECT id, source_id, url, criteria, started_at, finished_at, status, listings_found, listings_shown
		FROM search_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SearchRun
	for rows.Next() {
		var (
			run      models.SearchRun
			criteria []byte
			status   string
		)
		if err := rows.Scan(&run.ID, &run.SourceID, &run.URL, &criteria, &run.StartedAt, &run.FinishedAt,
			&status, &run.ListingsFound, &run.ListingsShown); err != nil {
			return nil, err
		}
		if len(criteria) > 0 {
			if err := json.Unmarshal(criteria, &run.Criteria); err != nil {
				return nil, fmt.Errorf("unmarshal criteria: %w", err)
			}
		}
		run.Status = models.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// =============================================================================
// Search Logs
// =============================================================================

func (s *PostgresRunLog) Log(ctx context.Context, runID uuid.UUID, level models.LogLevel, message string) error {
	query := `
		INSERT INTO search_logs (run_id, timestamp, level, message)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, runID, time.Now(), string(level), message)
	return err
}

func (s *PostgresRunLog) RunLogs(ctx context.Context, runID uuid.UUID) ([]models.SearchLog, error) {
	query := `
		SELECT id, run_id::text, timestamp, level, message
		FROM search_logs
		WHERE run_id = $1
		ORDER BY timestamp, id`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.SearchLog
	for rows.Next() {
		var l models.SearchLog
		var level string
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &level, &l.Message); err != nil {
			return nil, err
		}
		l.Level = models.LogLevel(level)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
