// Package sqlitestore mirrors synced records into a local SQLite database.
package sqlitestore

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

	"github.com/google/uuid"
	goslug "github.com/gosimple/slug"
	_ "modernc.org/sqlite"

	"github.com/aidanlsb/vaultkit/internal/fieldmap"
	"github.com/aidanlsb/vaultkit/internal/syncer"
)

// ErrNotFound is returned by Lookup for an unknown name.
var ErrNotFound = errors.New("record not found")

// reserved columns of the records table.
var reserved = map[string]bool{"name": true, "run_id": true, "synced_at": true}

// Store is a SQLite backed syncer.RecordStore.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ syncer.RecordStore = (*Store)(nil)

// Run is one BatchUpsert call recorded in sync_runs.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Records   int       `json:"records"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the schema. record_columns maps generated column names
// back to the record keys they came from.
func (s *Store) initialize() error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS records (
		name TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		synced_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS record_columns (
		name TEXT PRIMARY KEY,
		source TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		records INTEGER NOT NULL,
		created INTEGER NOT NULL,
		updated INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// ColumnName turns a record key into a SQLite column name: "Birth Date"
// becomes "birth_date". Keys that collide with the table's own columns get
// an "f_" prefix.
func ColumnName(key string) string {
	col := strings.ReplaceAll(goslug.Make(key), "-", "_")
	if col == "" || reserved[col] || (col[0] >= '0' && col[0] <= '9') {
		col = "f_" + col
	}
	return col
}

// BatchUpsert writes records in one transaction, matched on the Name column.
// Columns are added the first time a key is seen. Only the keys a record
// carries are overwritten; other columns keep their stored value.
func (s *Store) BatchUpsert(ctx context.Context, records []*fieldmap.Record, keyFields []string) (syncer.UpsertSummary, error) {
	var summary syncer.UpsertSummary
	if len(keyFields) != 1 || keyFields[0] != fieldmap.NameColumn {
		return summary, fmt.Errorf("sqlite store only matches on %q, got %v", fieldmap.NameColumn, keyFields)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	columns, err := existingColumns(ctx, tx)
	if err != nil {
		return summary, err
	}

	runID := uuid.NewString()
	startedAt := s.now().UTC().Format(time.RFC3339)

	for _, rec := range records {
		name := rec.Name()
		if name == "" {
			return summary, fmt.Errorf("record without a %s value", fieldmap.NameColumn)
		}

		cols := []string{"name", "run_id", "synced_at"}
		args := []interface{}{name, runID, startedAt}
		for _, key := range rec.Keys() {
			if key == fieldmap.NameColumn {
				continue
			}
			col, err := ensureColumn(ctx, tx, columns, key)
			if err != nil {
				return summary, err
			}
			v, _ := rec.Get(key)
			stored, err := storedValue(v)
			if err != nil {
				return summary, fmt.Errorf("record %s column %q: %w", name, key, err)
			}
			cols = append(cols, col)
			args = append(args, stored)
		}

		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM records WHERE name = ?", name).Scan(&exists)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			summary.Created++
		case err != nil:
			return summary, fmt.Errorf("look up %s: %w", name, err)
		default:
			summary.Updated++
		}

		if _, err := tx.ExecContext(ctx, upsertSQL(cols), args...); err != nil {
			return summary, fmt.Errorf("upsert %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO sync_runs (id, started_at, records, created, updated) VALUES (?, ?, ?, ?, ?)",
		runID, startedAt, len(records), summary.Created, summary.Updated,
	); err != nil {
		return summary, fmt.Errorf("record sync run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return syncer.UpsertSummary{}, fmt.Errorf("commit: %w", err)
	}
	return summary, nil
}

// Lookup returns the stored columns of one record, keyed by their original
// record keys.
func (s *Store) Lookup(ctx context.Context, name string) (map[string]interface{}, error) {
	sources := map[string]string{}
	rows, err := s.db.QueryContext(ctx, "SELECT name, source FROM record_columns")
	if err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	for rows.Next() {
		var col, source string
		if err := rows.Scan(&col, &source); err != nil {
			rows.Close()
			return nil, err
		}
		sources[col] = source
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, "SELECT * FROM records WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := map[string]interface{}{}
	for i, col := range cols {
		switch col {
		case "name":
			out[fieldmap.NameColumn] = values[i]
		case "run_id", "synced_at":
		default:
			if values[i] == nil {
				continue
			}
			key, ok := sources[col]
			if !ok {
				key = col
			}
			out[key] = values[i]
		}
	}
	return out, nil
}

// Runs returns the recorded sync runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, records, created, updated FROM sync_runs ORDER BY started_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Records, &r.Created, &r.Updated); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func existingColumns(ctx context.Context, tx *sql.Tx) (map[string]string, error) {
	columns := map[string]string{}
	rows, err := tx.QueryContext(ctx, "SELECT name, source FROM record_columns")
	if err != nil {
		return nil, fmt.Errorf("load columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var col, source string
		if err := rows.Scan(&col, &source); err != nil {
			return nil, err
		}
		columns[col] = source
	}
	return columns, rows.Err()
}

// ensureColumn adds the column for key if needed and returns its name.
func ensureColumn(ctx context.Context, tx *sql.Tx, columns map[string]string, key string) (string, error) {
	col := ColumnName(key)
	if source, ok := columns[col]; ok {
		if source != key {
			return "", fmt.Errorf("keys %q and %q both map to column %q", source, key, col)
		}
		return col, nil
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE records ADD COLUMN "%s"`, col)); err != nil {
		return "", fmt.Errorf("add column %s: %w", col, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO record_columns (name, source) VALUES (?, ?)", col, key); err != nil {
		return "", fmt.Errorf("register column %s: %w", col, err)
	}
	columns[col] = key
	return col, nil
}

func upsertSQL(cols []string) string {
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		quoted[i] = `"` + c + `"`
		placeholders[i] = "?"
		if c != "name" {
			updates = append(updates, fmt.Sprintf(`"%s" = excluded."%s"`, c, c))
		}
	}
	return fmt.Sprintf("INSERT INTO records (%s) VALUES (%s) ON CONFLICT(name) DO UPDATE SET %s",
		strings.Join(quoted, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}

// storedValue converts a record value into something SQLite can hold.
// Lists and mappings are stored as JSON text.
func storedValue(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case nil, string, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}
