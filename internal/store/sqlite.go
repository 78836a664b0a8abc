package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ldaputil/ldifdiff/internal/ldif"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a disk-backed Snapshot for originals too large to hold in
// memory. Entries are serialized as JSON; the table is created on open.
type SQLite struct {
	db *sql.DB
}

var _ Snapshot = (*SQLite)(nil)

// OpenSQLite creates or opens a spill database at path.
//
// The connection is configured for this tool's single-writer access
// pattern: one connection, WAL journal, NORMAL synchronous mode. The
// store is scratch space for a single run, not a durable artifact.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open spill store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect spill store: %w", err)
	}

	// SQLite supports one writer at a time; a second connection would
	// only produce SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply spill store schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Put stores entry under id, overwriting any previous entry.
func (s *SQLite) Put(ctx context.Context, id string, entry *ldif.Entry) error {
	attrs, err := marshalAttrs(entry.Attributes)
	if err != nil {
		return fmt.Errorf("put %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, dn, attrs)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET dn = excluded.dn, attrs = excluded.attrs
	`, id, entry.DN, attrs)
	if err != nil {
		return fmt.Errorf("put %s: %w", id, err)
	}
	return nil
}

// Get returns the entry stored under id, if any.
func (s *SQLite) Get(ctx context.Context, id string) (*ldif.Entry, bool, error) {
	var dn, attrs string
	err := s.db.QueryRowContext(ctx, `
		SELECT dn, attrs FROM entries WHERE id = ?
	`, id).Scan(&dn, &attrs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", id, err)
	}
	entry, err := unmarshalEntry(dn, attrs)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", id, err)
	}
	return entry, true, nil
}

// Delete removes the entry stored under id, if present.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// Len returns the number of entries currently stored.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Iterate visits remaining entries in insertion order.
func (s *SQLite) Iterate(ctx context.Context, fn func(id string, entry *ldif.Entry) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dn, attrs FROM entries ORDER BY rowid ASC
	`)
	if err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, dn, attrs string
		if err := rows.Scan(&id, &dn, &attrs); err != nil {
			return fmt.Errorf("iterate entries: %w", err)
		}
		entry, err := unmarshalEntry(dn, attrs)
		if err != nil {
			return fmt.Errorf("iterate entries: %s: %w", id, err)
		}
		if err := fn(id, entry); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}
	return nil
}

// Clear drops all entries.
func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// marshalAttrs serializes an attribute map as JSON TEXT. json.Marshal
// sorts map keys, so equal maps serialize identically.
func marshalAttrs(attrs map[string][]string) (string, error) {
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

func unmarshalEntry(dn, attrs string) (*ldif.Entry, error) {
	var m map[string][]string
	if err := json.Unmarshal([]byte(attrs), &m); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	if m == nil {
		m = make(map[string][]string)
	}
	return &ldif.Entry{DN: dn, Attributes: m}, nil
}
