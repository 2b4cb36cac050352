package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rafeyshell/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS conversation_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	query TEXT NOT NULL,
	response TEXT NOT NULL
);
`

// SQLiteStore keeps history in a single SQLite table.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens or creates the history database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "OpenSQLite")
	defer timer.Stop()

	if dbPath == "" {
		return nil, fmt.Errorf("database path required")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open history database: %v", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify database connection: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.StoreDebug("History database ready at %s", dbPath)
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Load returns all rows oldest first.
func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, query, response FROM conversation_history ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var ts string
		var e Entry
		if err := rows.Scan(&ts, &e.Query, &e.Response); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the table content in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, entries []Entry) error {
	timer := logging.StartTimer(logging.CategoryStore, "SQLiteStore.Save")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM conversation_history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO conversation_history (timestamp, query, response) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		ts := e.Timestamp.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.ExecContext(ctx, ts, e.Query, e.Response); err != nil {
			return fmt.Errorf("failed to insert history row: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
