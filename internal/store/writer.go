// Package store persists a resolved path index into SQLite so
// downstream tooling can query pipeline paths without re-resolving
// the configuration and metadata.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/agentic-research/waypath/api"
	_ "modernc.org/sqlite"
)

// Writer batch-inserts index records into a path_records table.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmt      *sql.Stmt
	batchSize int
	count     int
	seq       map[string]int
}

// NewWriter opens (or creates) the database at dbPath and prepares the
// schema. The connection is tuned for bulk insert; the database is not
// meant to be written concurrently.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS path_records (
		file_key TEXT NOT NULL,
		seq INTEGER NOT NULL,
		path TEXT NOT NULL,
		class_level TEXT,
		source TEXT NOT NULL,
		placeholders JSON,
		PRIMARY KEY (file_key, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_path_records_path ON path_records(path);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{
		db:        db,
		batchSize: 10000,
		seq:       make(map[string]int),
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmt, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO path_records (file_key, seq, path, class_level, source, placeholders)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	return err
}

func (w *Writer) commitTx() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
	}
	return w.tx.Commit()
}

// Add appends one record under fileKey. Records are numbered in call
// order per key, preserving index order in the table.
func (w *Writer) Add(fileKey string, rec api.Record) error {
	var placeholders []byte
	if len(rec.Placeholders) > 0 {
		placeholders, _ = json.Marshal(rec.Placeholders)
	}

	seq := w.seq[fileKey]
	w.seq[fileKey] = seq + 1

	var classLevel *string
	if rec.ClassLevel != "" {
		classLevel = &rec.ClassLevel
	}

	if _, err := w.stmt.Exec(fileKey, seq, rec.Path, classLevel, rec.Source, placeholders); err != nil {
		return fmt.Errorf("insert record %s[%d]: %w", fileKey, seq, err)
	}

	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return err
		}
		if err := w.beginTx(); err != nil {
			return err
		}
		w.count = 0
	}
	return nil
}

// Close commits any pending batch and closes the database.
func (w *Writer) Close() error {
	commitErr := w.commitTx()
	closeErr := w.db.Close()
	if commitErr != nil {
		return commitErr
	}
	return closeErr
}
