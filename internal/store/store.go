// Package store handles SQLite persistence of recorded sample traces.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored times sort and compare as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrTraceNotFound is returned when a trace id does not exist.
var ErrTraceNotFound = errors.New("trace not found")

// Store wraps SQLite access for trace data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS traces (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source TEXT NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			sample_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trace_samples (
			trace_id INTEGER NOT NULL REFERENCES traces(id),
			seq INTEGER NOT NULL,
			ts_nanos INTEGER NOT NULL,
			ax REAL NOT NULL,
			ay REAL NOT NULL,
			PRIMARY KEY (trace_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS trace_resets (
			trace_id INTEGER NOT NULL REFERENCES traces(id),
			seq INTEGER NOT NULL,
			PRIMARY KEY (trace_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_traces_started_at ON traces(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_traces_source ON traces(source);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertTrace stores a trace, its samples and its reset points in one
// transaction.
func (s *Store) InsertTrace(ctx context.Context, trace model.Trace, samples []motion.Sample) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO traces (started_at, ended_at, source, width, height, sample_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		trace.StartedAt.UTC().Format(timeLayout),
		trace.EndedAt.UTC().Format(timeLayout),
		trace.Source,
		trace.Width,
		trace.Height,
		len(samples),
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(samples) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO trace_samples (trace_id, seq, ts_nanos, ax, ay)
			 VALUES (?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, smp := range samples {
			if _, err = stmt.ExecContext(ctx, id, i, smp.TimestampNanos, smp.AX, smp.AY); err != nil {
				return 0, err
			}
		}
	}

	for _, seq := range trace.Resets {
		if seq <= 0 || seq >= len(samples) {
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO trace_resets (trace_id, seq) VALUES (?, ?)`, id, seq); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListTraces returns traces matching the filter, oldest first.
func (s *Store) ListTraces(ctx context.Context, filter model.TraceFilter) ([]model.Trace, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Since != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, source, width, height, sample_count
		FROM traces
		WHERE %s
		ORDER BY started_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var traces []model.Trace
	for rows.Next() {
		trace, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		traces = append(traces, trace)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(traces) > filter.Last {
		traces = traces[len(traces)-filter.Last:]
	}
	return traces, nil
}

// GetTrace returns a single trace by id, including its reset points.
func (s *Store) GetTrace(ctx context.Context, id int64) (model.Trace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, ended_at, source, width, height, sample_count
		 FROM traces WHERE id = ?`, id)
	trace, err := scanTrace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trace{}, fmt.Errorf("trace %d: %w", id, ErrTraceNotFound)
	}
	if err != nil {
		return model.Trace{}, err
	}
	if trace.Resets, err = s.loadResets(ctx, id); err != nil {
		return model.Trace{}, err
	}
	return trace, nil
}

func (s *Store) loadResets(ctx context.Context, id int64) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq FROM trace_resets WHERE trace_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var resets []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, err
		}
		resets = append(resets, seq)
	}
	return resets, rows.Err()
}

// LoadSamples returns the samples of a trace in recording order.
func (s *Store) LoadSamples(ctx context.Context, id int64) ([]motion.Sample, error) {
	if _, err := s.GetTrace(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts_nanos, ax, ay FROM trace_samples
		 WHERE trace_id = ?
		 ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var samples []motion.Sample
	for rows.Next() {
		var smp motion.Sample
		if err := rows.Scan(&smp.TimestampNanos, &smp.AX, &smp.AY); err != nil {
			return nil, err
		}
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// DeleteTrace removes a trace and its samples.
func (s *Store) DeleteTrace(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM trace_samples WHERE trace_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM trace_resets WHERE trace_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM traces WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("trace %d: %w", id, ErrTraceNotFound)
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrace(row rowScanner) (model.Trace, error) {
	var trace model.Trace
	var startedAt, endedAt string
	if err := row.Scan(&trace.ID, &startedAt, &endedAt, &trace.Source, &trace.Width, &trace.Height, &trace.Samples); err != nil {
		return model.Trace{}, err
	}
	var err error
	if trace.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return model.Trace{}, err
	}
	if trace.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return model.Trace{}, err
	}
	return trace, nil
}
