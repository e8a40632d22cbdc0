// Package store persists pocs models in SQLite through database/sql and
// the pure-Go modernc.org/sqlite driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/model"
	"k8s.io/utils/clock"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options configures Open.
type Options struct {
	// Path is the database file, or MemoryPath.
	Path string

	// Location is used for timezone-aware defaults and for values read back.
	// Defaults to UTC.
	Location *time.Location

	// Clock drives default timestamps. Defaults to the real clock.
	Clock clock.PassiveClock

	// BusyTimeout is passed to SQLite's busy handler.
	BusyTimeout time.Duration

	// Retry controls retries of busy/locked operations.
	Retry RetryConfig
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a handle on an open database. A Store returned to a Tx callback
// runs every query inside that transaction.
type Store struct {
	db    *sql.DB
	q     querier
	inTx  bool
	path  string
	loc   *time.Location
	now   func() time.Time
	retry RetryConfig
}

// Open opens (creating if needed) the database at opts.Path and migrates it.
func Open(ctx context.Context, opts Options) (*Store, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	retry := opts.Retry
	if retry.MaxRetries == 0 && retry.InitialBackoff == 0 {
		retry = DefaultRetryConfig()
	}

	s := &Store{
		db:    db,
		q:     db,
		path:  path,
		loc:   loc,
		now:   model.NowFunc(opts.Clock, loc),
		retry: retry,
	}

	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Debug("opened database", "path", path)
	return s, nil
}

func dsn(path string, busyTimeout time.Duration) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	if busyTimeout > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	}
	if path == MemoryPath {
		return "file::memory:?" + params.Encode()
	}
	return "file:" + path + "?" + params.Encode()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Location returns the location timestamps are expressed in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// NowFunc returns the timezone-aware "now" used for defaults.
func (s *Store) NowFunc() func() time.Time {
	return s.now
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back otherwise. Nested calls reuse the outer transaction.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	return WithRetry(ctx, s.retry, func() error {
		sqlTx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		txStore := *s
		txStore.q = sqlTx
		txStore.inTx = true

		if err := fn(&txStore); err != nil {
			_ = sqlTx.Rollback()
			return err
		}
		if err := sqlTx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

// Posts returns the Post repository.
func (s *Store) Posts() *PostRepository {
	return &PostRepository{s: s}
}

// DefaultPosts returns the PostWithDefaultDateTime repository.
func (s *Store) DefaultPosts() *DefaultPostRepository {
	return &DefaultPostRepository{s: s}
}

// Products returns the Product repository.
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{s: s}
}

// ListOptions bounds a list query. A zero Limit means no limit. Rows come
// back in primary key order, newest first when Descending is set.
type ListOptions struct {
	Limit      int
	Offset     int
	Descending bool
}

func (o ListOptions) orderBy() string {
	if o.Descending {
		return " ORDER BY id DESC"
	}
	return " ORDER BY id"
}

func (o ListOptions) clause() (string, []any) {
	if o.Limit <= 0 && o.Offset <= 0 {
		return "", nil
	}
	limit := o.Limit
	if limit <= 0 {
		limit = -1
	}
	return " LIMIT ? OFFSET ?", []any{limit, o.Offset}
}

func (s *Store) count(ctx context.Context, table, where string, args ...any) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM "` + table + `"` + where
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) deleteByID(ctx context.Context, meta model.Meta, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM "`+meta.Table+`" WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", meta.ModelName, id, err)
	}
	return requireAffected(res, meta, id)
}

func requireAffected(res sql.Result, meta model.Meta, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Model: meta.ModelName, ID: id}
	}
	return nil
}
