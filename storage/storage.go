// Package storage provides the content store backing the site: a SQLite
// database exposing select/insert/update/upsert/delete per table plus a
// change-notification stream, satisfying the content.Store contract.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pulsodigital/site/content"
)

// Store wraps a SQLite database holding the posts and cases tables and fans
// out change events to table subscribers.
type Store struct {
	db     *sql.DB
	notify *notifier
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write, busy timeout so writers wait instead of
	// failing with SQLITE_BUSY, synchronous=NORMAL is safe under WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, notify: newNotifier()}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection and drops all
// subscriptions.
func (s *Store) Close() error {
	s.notify.closeAll()
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL,
    author TEXT NOT NULL,
    date TEXT NOT NULL,
    read_time TEXT NOT NULL,
    image_url TEXT NOT NULL,
    featured INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'draft'
);
CREATE TABLE IF NOT EXISTS cases (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT NOT NULL,
    challenge TEXT NOT NULL,
    solution TEXT NOT NULL,
    results TEXT NOT NULL,
    client_name TEXT NOT NULL,
    client_industry TEXT NOT NULL DEFAULT '',
    client_size TEXT NOT NULL DEFAULT '',
    client_testimonial TEXT NOT NULL DEFAULT '',
    client_role TEXT NOT NULL DEFAULT '',
    duration TEXT NOT NULL,
    image_url TEXT NOT NULL,
    featured INTEGER NOT NULL DEFAULT 0,
    tools TEXT NOT NULL DEFAULT '[]',
    metrics TEXT NOT NULL DEFAULT '[]',
    gallery TEXT NOT NULL DEFAULT '[]',
    status TEXT NOT NULL DEFAULT 'draft'
);
CREATE INDEX IF NOT EXISTS idx_posts_date ON posts(date DESC);
CREATE INDEX IF NOT EXISTS idx_cases_slug ON cases(slug);
`)
	return err
}

// Select returns every row of a table in wire form. Posts come back ordered
// by date descending, cases by creation time descending.
func (s *Store) Select(ctx context.Context, table string) ([]json.RawMessage, error) {
	switch table {
	case content.TablePosts:
		return s.selectPosts(ctx)
	case content.TableCases:
		return s.selectCases(ctx)
	}
	return nil, errUnknownTable(table)
}

// Insert stores a new row, assigning its id and created_at, and returns the
// stored row.
func (s *Store) Insert(ctx context.Context, table string, record json.RawMessage) (json.RawMessage, error) {
	switch table {
	case content.TablePosts:
		return s.insertPost(ctx, record)
	case content.TableCases:
		return s.insertCase(ctx, record)
	}
	return nil, errUnknownTable(table)
}

// Update replaces the row with the given id and returns the stored row. A
// missing row yields a StoreError with code 404.
func (s *Store) Update(ctx context.Context, table, id string, record json.RawMessage) (json.RawMessage, error) {
	switch table {
	case content.TablePosts:
		return s.updatePost(ctx, id, record)
	case content.TableCases:
		return s.updateCase(ctx, id, record)
	}
	return nil, errUnknownTable(table)
}

// Upsert inserts or replaces each record by id. Rows without an id are
// treated as inserts and get one assigned; replaced rows keep their original
// created_at.
func (s *Store) Upsert(ctx context.Context, table string, records []json.RawMessage) error {
	for _, rec := range records {
		var err error
		switch table {
		case content.TablePosts:
			err = s.upsertPost(ctx, rec)
		case content.TableCases:
			err = s.upsertCase(ctx, rec)
		default:
			err = errUnknownTable(table)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the row with the given id. Deleting an absent row is a
// no-op.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	switch table {
	case content.TablePosts, content.TableCases:
	default:
		return errUnknownTable(table)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return storeErr(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify.publish(content.Event{Type: content.EventDelete, Table: table, OldID: id})
	}
	return nil
}

// Subscribe registers a handler for a table's change events. Events are
// delivered in order on a dedicated goroutine per subscription.
func (s *Store) Subscribe(table string, handler func(content.Event)) content.Subscription {
	return s.notify.subscribe(table, handler)
}

func errUnknownTable(table string) error {
	return &content.StoreError{Code: "400", Message: fmt.Sprintf("unknown table %q", table)}
}

func storeErr(err error) error {
	return &content.StoreError{Code: "500", Message: err.Error()}
}
