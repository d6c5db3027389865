// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/perfdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Document names in the kv table.
const (
	KeySavedURLs       = "savedUrls"
	KeyPreviousResults = "previousResults"
)

// Store wraps SQLite access for saved URLs, prior results and run history.
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
	// One writer keeps the pure-Go driver from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)
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
		`CREATE TABLE IF NOT EXISTS kv (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			url_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_results (
			run_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			device TEXT NOT NULL,
			performance REAL NOT NULL,
			interactive_s REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_results_url ON run_results(url, device);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) getDocument(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) putDocument(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, time.Now().Format(time.RFC3339Nano))
	return err
}

// loadJSON decodes a stored document. Missing or malformed documents read as the zero value.
func loadJSON[T any](ctx context.Context, s *Store, name string) (T, error) {
	var out T
	raw, ok, err := s.getDocument(ctx, name)
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !ok {
		return out, nil
	}
	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		logrus.WithError(err).WithField("key", name).Warn("discarding malformed stored document")
		return out, nil
	}
	return decoded, nil
}

func (s *Store) saveJSON(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.putDocument(ctx, name, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// LoadSavedURLs returns the saved URL list; malformed data reads as empty.
func (s *Store) LoadSavedURLs(ctx context.Context) ([]model.SavedURL, error) {
	return loadJSON[[]model.SavedURL](ctx, s, KeySavedURLs)
}

// SaveSavedURLs rewrites the saved URL list.
func (s *Store) SaveSavedURLs(ctx context.Context, entries []model.SavedURL) error {
	if entries == nil {
		entries = []model.SavedURL{}
	}
	return s.saveJSON(ctx, KeySavedURLs, entries)
}

// LoadPreviousResults returns the persisted per-(url, device) loading times.
func (s *Store) LoadPreviousResults(ctx context.Context) ([]model.PersistedDelta, error) {
	return loadJSON[[]model.PersistedDelta](ctx, s, KeyPreviousResults)
}

// SavePreviousResults rewrites the persisted per-(url, device) loading times.
func (s *Store) SavePreviousResults(ctx context.Context, entries []model.PersistedDelta) error {
	if entries == nil {
		entries = []model.PersistedDelta{}
	}
	return s.saveJSON(ctx, KeyPreviousResults, entries)
}

// InsertRun stores a completed run and a summary row per entry.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, entries []model.ResultEntry) (int64, error) {
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
		`INSERT INTO runs (started_at, ended_at, url_count) VALUES (?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339Nano),
		run.EndedAt.Format(time.RFC3339Nano),
		run.URLCount,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(entries) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO run_results (run_id, position, url, device, performance, interactive_s)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, entry := range entries {
			tti, _ := entry.Report.InteractiveSeconds()
			perf := entry.Report.Categories[model.CategoryPerformance]
			if _, err = stmt.ExecContext(ctx, id, i, entry.URL, string(entry.Device), perf, tti); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns runs ordered oldest first, limited to the most recent last runs when last > 0.
func (s *Store) ListRuns(ctx context.Context, last int) ([]model.RunRecord, error) {
	query := `SELECT id, started_at, ended_at, url_count FROM runs ORDER BY ended_at DESC, id DESC`
	args := []any{}
	if last > 0 {
		query += ` LIMIT ?`
		args = append(args, last)
	}
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

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &run.URLCount); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// ListRunResults returns the summary rows of the given runs, ordered by run end time then position.
func (s *Store) ListRunResults(ctx context.Context, runIDs []int64) ([]model.RunResult, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT rr.run_id, rr.url, rr.device, rr.performance, rr.interactive_s, r.ended_at
		FROM run_results rr
		JOIN runs r ON r.id = rr.run_id
		WHERE rr.run_id IN (%s)
		ORDER BY r.ended_at ASC, rr.run_id ASC, rr.position ASC`, strings.Join(placeholders, ","))
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

	var result []model.RunResult
	for rows.Next() {
		var rr model.RunResult
		var device, endedAt string
		if err := rows.Scan(&rr.RunID, &rr.URL, &device, &rr.PerformanceScore, &rr.InteractiveSeconds, &endedAt); err != nil {
			return nil, err
		}
		rr.Device = model.DeviceClass(device)
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		rr.EndedAt = parsed
		result = append(result, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
