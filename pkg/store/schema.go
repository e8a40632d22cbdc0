package store

import (
	"context"
	"fmt"

	"github.com/andri/pocs/internal/logger"
	"github.com/andri/pocs/pkg/model"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order and recorded in schema_migrations.
var migrations = []migration{
	{
		version: 1,
		name:    "datetime_default_now.0001_initial",
		stmts: []string{`
	CREATE TABLE IF NOT EXISTS datetime_default_now_post (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		datetime TEXT NOT NULL
	)`, `
	CREATE TABLE IF NOT EXISTS datetime_default_now_postwithdefaultdatetime (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		datetime TEXT NOT NULL
	)`},
	},
	{
		version: 2,
		name:    "django_filter_pagination.0001_initial",
		stmts: []string{`
	CREATE TABLE IF NOT EXISTS django_filter_pagination_product (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		release_date TEXT NOT NULL
	)`,
			`CREATE INDEX IF NOT EXISTS idx_product_release_date ON django_filter_pagination_product(release_date)`,
		},
	},
}

// tables lists the model tables in dependency order.
func tables() []string {
	metas := model.All()
	names := make([]string, len(metas))
	for i, m := range metas {
		names[i] = m.Table
	}
	return names
}

// Migrate creates missing tables. It is safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := s.Tx(ctx, func(tx *Store) error {
			for _, stmt := range m.stmts {
				if _, err := tx.q.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("apply %s: %w", m.name, err)
				}
			}
			_, err := tx.q.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, formatTime(s.now()))
			return err
		})
		if err != nil {
			return err
		}
		logger.Info("applied migration", "name", m.name)
	}

	return nil
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version int    `json:"version" yaml:"version"`
	Name    string `json:"name" yaml:"name"`
	Applied string `json:"applied" yaml:"applied"`
}

// AppliedMigrations lists recorded migrations in order.
func (s *Store) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT version, name, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var out []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		if err := rows.Scan(&m.Version, &m.Name, &m.Applied); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Flush deletes every row from the model tables and resets their id
// sequences.
func (s *Store) Flush(ctx context.Context) error {
	return s.Tx(ctx, func(tx *Store) error {
		for _, table := range tables() {
			if _, err := tx.q.ExecContext(ctx, `DELETE FROM "`+table+`"`); err != nil {
				return fmt.Errorf("flush %s: %w", table, err)
			}
			if _, err := tx.q.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = ?`, table); err != nil {
				return fmt.Errorf("reset sequence %s: %w", table, err)
			}
		}
		return nil
	})
}
