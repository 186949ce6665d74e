package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pagemd/pagemd/internal/model"
)

// HistoryDB provides SQLite-based storage for conversion run history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all runs rather than
// one file per document. This keeps listing and lookup queries simple and
// makes backup/restore a single-file operation.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "pagemd.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses query-parameter connection options.
	// mode=rw prevents creating new files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY churn for our write-then-read access pattern.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one record per completed conversion
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		file_name TEXT NOT NULL,
		pages_total INTEGER NOT NULL,
		pages_skipped INTEGER NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		completed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_completed ON runs(completed_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a completed run and returns its database ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.RunResult) (int64, error) {
	resultJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run result: %w", err)
	}

	query := `
	INSERT INTO runs (source, file_name, pages_total, pages_skipped, input_tokens, output_tokens, elapsed_ms, completed_at, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.Source,
		run.FileName,
		run.PagesTotal,
		run.PagesSkipped,
		run.InputTokens,
		run.OutputTokens,
		run.Elapsed.Milliseconds(),
		run.CompletedAt.UTC().Format("2006-01-02 15:04:05"),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading the full result.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Source is the document reference the run was started with.
	Source string

	// FileName is the derived output name.
	FileName string

	// PagesTotal is the number of pages the source produced.
	PagesTotal int

	// PagesSkipped is the number of pages dropped due to failures.
	PagesSkipped int

	// InputTokens is the summed prompt token count.
	InputTokens int64

	// OutputTokens is the summed completion token count.
	OutputTokens int64

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// CompletedAt is when the run finished.
	CompletedAt time.Time
}

// ListRuns returns metadata for stored runs, most recent first.
// A non-positive limit returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, source, file_name, pages_total, pages_skipped, input_tokens, output_tokens, elapsed_ms, completed_at
	FROM runs
	ORDER BY completed_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var elapsedMS int64
		var completedAt string

		if err := rows.Scan(
			&meta.ID,
			&meta.Source,
			&meta.FileName,
			&meta.PagesTotal,
			&meta.PagesSkipped,
			&meta.InputTokens,
			&meta.OutputTokens,
			&elapsedMS,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		meta.CompletedAt = parseTimestamp(completedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListRunsBySource returns metadata for runs of one source, most recent first.
func (hdb *HistoryDB) ListRunsBySource(ctx context.Context, source string) ([]RunMetadata, error) {
	all, err := hdb.ListRuns(ctx, 0)
	if err != nil {
		return nil, err
	}

	results := make([]RunMetadata, 0, len(all))
	for _, meta := range all {
		if meta.Source == source {
			results = append(results, meta)
		}
	}
	return results, nil
}

// GetRunByID retrieves a full run result by its database ID.
// Returns nil without error when no run with that ID exists.
func (hdb *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.RunResult, error) {
	query := `
	SELECT result_json FROM runs
	WHERE id = ?
	`

	var resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.RunResult
	if err := json.Unmarshal([]byte(resultJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run result: %w", err)
	}

	return &run, nil
}

// GetLatestRun retrieves the most recent run for a source.
// Returns nil without error when the source has no stored runs.
func (hdb *HistoryDB) GetLatestRun(ctx context.Context, source string) (*model.RunResult, error) {
	query := `
	SELECT result_json FROM runs
	WHERE source = ?
	ORDER BY completed_at DESC, id DESC
	LIMIT 1
	`

	var resultJSON string
	err := hdb.db.QueryRowContext(ctx, query, source).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var run model.RunResult
	if err := json.Unmarshal([]byte(resultJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run result: %w", err)
	}

	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
