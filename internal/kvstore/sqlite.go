package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key      TEXT PRIMARY KEY,
	value    BLOB NOT NULL,
	revision INTEGER NOT NULL
);`

// SQLiteStore keeps documents in a single sqlite table. Writers race through
// the revision column: the CAS lives in the UPDATE's WHERE clause.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare documents table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	var value []byte
	var rev int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, revision FROM documents WHERE key = ?`, key,
	).Scan(&value, &rev)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return value, uint64(rev), nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, rev uint64) error {
	next := int64(Revision(value))

	if rev == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO documents (key, value, revision) VALUES (?, ?, ?)`,
			key, value, next,
		)
		if err != nil && isConstraintErr(err) {
			return ErrRevisionMismatch
		}
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET value = ?, revision = ? WHERE key = ? AND revision = ?`,
		value, next, key, int64(rev),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRevisionMismatch
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isConstraintErr reports whether err is the driver's duplicate-key
// constraint violation.
func isConstraintErr(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}
