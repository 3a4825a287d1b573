package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"iv_housing/models"
)

type SQLiteRunLog struct {
	db *sql.DB
}

func NewSQLiteRunLog(dbPath string) (*SQLiteRunLog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteRunLog{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}

	return store, nil
}

func (s *SQLiteRunLog) Close() error {
	return s.db.Close()
}

func (s *SQLiteRunLog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_runs (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		url TEXT,
		criteria JSON,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		listings_shown INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS search_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_search_logs_run ON search_logs(run_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteRunLog) CreateRun(ctx context.Context, run *models.SearchRun) error {
	criteria, err := json.Marshal(run.Criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_runs (id, source_id, url, criteria, started_at, status, listings_found, listings_shown)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0)`,
		run.ID.String(), run.SourceID, run.URL, string(criteria), run.StartedAt, string(run.Status))
	return err
}

func (s *SQLiteRunLog) FinishRun(ctx context.Context, run *models.SearchRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE search_runs SET finished_at = ?, status = ?, listings_found = ?, listings_shown = ?
		WHERE id = ?`,
		run.FinishedAt, string(run.Status), run.ListingsFound, run.ListingsShown, run.ID.String())
	return err
}

func (s *SQLiteRunLog) Log(ctx context.Context, runID uuid.UUID, level models.LogLevel, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_logs (run_id, timestamp, level, message)
		VALUES (?, ?, ?, ?)`,
		runID.String(), time.Now(), string(level), message)
	return err
}

// RecentRuns returns the newest runs first.
func (s *SQLiteRunLog) RecentRuns(ctx context.Context, limit int) ([]models.SearchRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, url, criteria, started_at, finished_at, status, listings_found, listings_shown
		FROM search_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.SearchRun
	for rows.Next() {
		var (
			run      models.SearchRun
			id       string
			criteria sql.NullString
			finished sql.NullTime
			status   string
		)
		if err := rows.Scan(&id, &run.SourceID, &run.URL, &criteria, &run.StartedAt, &finished,
			&status, &run.ListingsFound, &run.ListingsShown); err != nil {
			return nil, err
		}

		run.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		if criteria.Valid && criteria.String != "" {
			if err := json.Unmarshal([]byte(criteria.String), &run.Criteria); err != nil {
				return nil, fmt.Errorf("unmarshal criteria: %w", err)
			}
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		run.Status = models.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteRunLog) RunLogs(ctx context.Context, runID uuid.UUID) ([]models.SearchLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, timestamp, level, message
		FROM search_logs WHERE run_id = ? ORDER BY timestamp, id`, runID.String())
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
