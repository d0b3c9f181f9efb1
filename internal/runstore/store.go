// Package runstore records planning runs in a SQLite database.
package runstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Run is one recorded plan call.
type Run struct {
	ID          string
	BatchID     string
	Fingerprint uint64
	Seed        uint64
	Resolution  float64
	Diagonal    bool
	Success     bool
	Iterations  int
	Visited     int
	PathPoints  int
	Cost        float64
	Duration    time.Duration
	// Error is set when the run was cut short, e.g. by its timeout.
	Error     string
	CreatedAt time.Time
}

// Summary aggregates the runs of a batch. Means over successful runs are
// zero when nothing succeeded.
type Summary struct {
	Runs           int
	Successes      int
	MeanIterations float64
	MeanCost       float64
	MeanDuration   time.Duration
}

// SuccessRate returns Successes/Runs, or 0 for an empty batch.
func (s Summary) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Runs)
}

// Aggregate computes the Summary of runs in memory, with the same rules as
// Store.Summarize.
func Aggregate(runs []Run) Summary {
	var (
		sum         Summary
		iters, cost float64
		duration    time.Duration
	)
	for _, r := range runs {
		sum.Runs++
		duration += r.Duration
		if r.Success {
			sum.Successes++
			iters += float64(r.Iterations)
			cost += r.Cost
		}
	}
	if sum.Successes > 0 {
		sum.MeanIterations = iters / float64(sum.Successes)
		sum.MeanCost = cost / float64(sum.Successes)
	}
	if sum.Runs > 0 {
		sum.MeanDuration = duration / time.Duration(sum.Runs)
	}
	return sum
}

type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{s.logger}
	// m is not closed: closing it would close s.db.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version returns the applied schema version.
func (s *Store) Version() (uint, error) {
	var v uint
	err := s.db.QueryRow(`SELECT version FROM schema_migrations LIMIT 1`).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Insert records r. A zero CreatedAt is replaced by the current time.
func (s *Store) Insert(ctx context.Context, r Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, batch_id, fingerprint, seed, resolution, diagonal, success,
			iterations, visited, path_points, cost, duration_ns, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BatchID, int64(r.Fingerprint), int64(r.Seed), r.Resolution, r.Diagonal, r.Success,
		r.Iterations, r.Visited, r.PathPoints, r.Cost, int64(r.Duration), r.Error, r.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// ListBatch returns the runs of a batch in insertion order.
func (s *Store) ListBatch(ctx context.Context, batchID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, batch_id, fingerprint, seed, resolution, diagonal, success,
			iterations, visited, path_points, cost, duration_ns, error, created_at
		FROM runs
		WHERE batch_id = ?
		ORDER BY created_at, rowid`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			fingerprint, seed int64
			duration, created int64
		)
		if err := rows.Scan(
			&r.ID, &r.BatchID, &fingerprint, &seed, &r.Resolution, &r.Diagonal, &r.Success,
			&r.Iterations, &r.Visited, &r.PathPoints, &r.Cost, &duration, &r.Error, &created,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Fingerprint = uint64(fingerprint)
		r.Seed = uint64(seed)
		r.Duration = time.Duration(duration)
		r.CreatedAt = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Summarize aggregates a batch.
func (s *Store) Summarize(ctx context.Context, batchID string) (Summary, error) {
	var (
		sum                   Summary
		iters, cost, duration sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(success), 0),
			AVG(CASE WHEN success = 1 THEN iterations END),
			AVG(CASE WHEN success = 1 THEN cost END),
			AVG(duration_ns)
		FROM runs
		WHERE batch_id = ?`, batchID).Scan(&sum.Runs, &sum.Successes, &iters, &cost, &duration)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize batch %s: %w", batchID, err)
	}
	sum.MeanIterations = iters.Float64
	sum.MeanCost = cost.Float64
	sum.MeanDuration = time.Duration(duration.Float64)
	return sum, nil
}

// migrateLogger routes golang-migrate output to zap.
type migrateLogger struct {
	logger *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Sugar().Debugf("[migrate] "+format, v...)
}

func (l migrateLogger) Verbose() bool {
	return false
}
