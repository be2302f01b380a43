package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/recsim/internal/experiment"
)

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (or creates) the archive at dbPath.
func NewSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// SaveRun inserts a run and its per-experiment metrics in one transaction.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	average, err := json.Marshal(run.Average)
	if err != nil {
		return fmt.Errorf("failed to marshal average: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, name, started_at, duration_ns, seed, matrix_size, experiments,
			config_yaml, average, percent_optimal, percent_well_served, recommender_gain
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.StartedAt.UTC().Format(timeLayout), int64(run.Duration),
		int64(run.Seed), run.MatrixSize, run.Experiments, run.ConfigYAML, string(average),
		run.Average.PercentOptimal, run.Average.PercentWellServed, run.Average.RecommenderGain)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, m := range run.Metrics {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal metrics %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, experiment, metrics) VALUES (?, ?, ?)`,
			run.ID, i, string(data)); err != nil {
			return fmt.Errorf("failed to insert metrics %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run and its per-experiment metrics.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run      Run
		started  string
		duration int64
		seed     int64
		config   sql.NullString
		average  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, started_at, duration_ns, seed, matrix_size, experiments, config_yaml, average
		FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Name, &started, &duration, &seed, &run.MatrixSize, &run.Experiments, &config, &average)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run.StartedAt, err = time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	run.Duration = time.Duration(duration)
	run.Seed = uint64(seed)
	run.ConfigYAML = config.String
	if err := json.Unmarshal([]byte(average), &run.Average); err != nil {
		return nil, fmt.Errorf("failed to unmarshal average: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT metrics FROM run_metrics WHERE run_id = ? ORDER BY experiment`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan metrics: %w", err)
		}
		var m experiment.Metrics
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
		run.Metrics = append(run.Metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics: %w", err)
	}

	return &run, nil
}

// ListRuns returns run summaries, newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, started_at, experiments, matrix_size,
			percent_optimal, percent_well_served, recommender_gain
		FROM runs ORDER BY started_at DESC, id ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var started string
		if err := rows.Scan(&sum.ID, &sum.Name, &started, &sum.Experiments, &sum.MatrixSize,
			&sum.PercentOptimal, &sum.PercentWellServed, &sum.RecommenderGain); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if sum.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run. Its metrics cascade.
func (s *SQLiteRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
