package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andri/pocs/pkg/model"
)

// PostRepository reads and writes Post rows.
type PostRepository struct {
	s *Store
}

// Create inserts p and sets its ID. A zero DateTime violates the NOT NULL
// constraint and returns a *ConstraintError.
func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	meta := model.PostMeta()
	id, err := r.s.insertTimestamp(ctx, meta, p.ID, p.DateTime)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Save inserts p when it has no ID and updates it otherwise.
func (r *PostRepository) Save(ctx context.Context, p *model.Post) error {
	if p.ID == 0 {
		return r.Create(ctx, p)
	}
	return r.Update(ctx, p)
}

// Update writes p's fields to its existing row.
func (r *PostRepository) Update(ctx context.Context, p *model.Post) error {
	return r.s.updateTimestamp(ctx, model.PostMeta(), p.ID, p.DateTime)
}

// Get loads the Post with the given id.
func (r *PostRepository) Get(ctx context.Context, id int64) (*model.Post, error) {
	t, err := r.s.getTimestamp(ctx, model.PostMeta(), id)
	if err != nil {
		return nil, err
	}
	return &model.Post{ID: id, DateTime: t}, nil
}

// List returns Posts ordered by id.
func (r *PostRepository) List(ctx context.Context, opts ListOptions) ([]model.Post, error) {
	var out []model.Post
	err := r.s.listTimestamps(ctx, model.PostMeta(), opts, func(id int64, t time.Time) {
		out = append(out, model.Post{ID: id, DateTime: t})
	})
	return out, err
}

// Count returns the number of Posts.
func (r *PostRepository) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, model.PostMeta().Table, "")
}

// Delete removes the Post with the given id.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.s.deleteByID(ctx, model.PostMeta(), id)
}

// DefaultPostRepository reads and writes PostWithDefaultDateTime rows.
type DefaultPostRepository struct {
	s *Store
}

// Create runs the model clean hook, so an empty DateTime is stored as the
// timezone-aware current time, then inserts p.
func (r *DefaultPostRepository) Create(ctx context.Context, p *model.PostWithDefaultDateTime) error {
	p.Clean(r.s.now)
	id, err := r.s.insertTimestamp(ctx, model.PostWithDefaultMeta(), p.ID, p.DateTime)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Save inserts p when it has no ID and updates it otherwise.
func (r *DefaultPostRepository) Save(ctx context.Context, p *model.PostWithDefaultDateTime) error {
	if p.ID == 0 {
		return r.Create(ctx, p)
	}
	return r.Update(ctx, p)
}

// Update writes p's fields to its existing row, backfilling an empty
// DateTime first.
func (r *DefaultPostRepository) Update(ctx context.Context, p *model.PostWithDefaultDateTime) error {
	p.Clean(r.s.now)
	return r.s.updateTimestamp(ctx, model.PostWithDefaultMeta(), p.ID, p.DateTime)
}

// Get loads the PostWithDefaultDateTime with the given id.
func (r *DefaultPostRepository) Get(ctx context.Context, id int64) (*model.PostWithDefaultDateTime, error) {
	t, err := r.s.getTimestamp(ctx, model.PostWithDefaultMeta(), id)
	if err != nil {
		return nil, err
	}
	return &model.PostWithDefaultDateTime{ID: id, DateTime: t}, nil
}

// List returns rows ordered by id.
func (r *DefaultPostRepository) List(ctx context.Context, opts ListOptions) ([]model.PostWithDefaultDateTime, error) {
	var out []model.PostWithDefaultDateTime
	err := r.s.listTimestamps(ctx, model.PostWithDefaultMeta(), opts, func(id int64, t time.Time) {
		out = append(out, model.PostWithDefaultDateTime{ID: id, DateTime: t})
	})
	return out, err
}

// Count returns the number of rows.
func (r *DefaultPostRepository) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, model.PostWithDefaultMeta().Table, "")
}

// Delete removes the row with the given id.
func (r *DefaultPostRepository) Delete(ctx context.Context, id int64) error {
	return r.s.deleteByID(ctx, model.PostWithDefaultMeta(), id)
}

// Both post tables share the (id, datetime) shape.

func (s *Store) insertTimestamp(ctx context.Context, meta model.Meta, id int64, t time.Time) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if id != 0 {
		res, err = s.q.ExecContext(ctx, `INSERT INTO "`+meta.Table+`" (id, datetime) VALUES (?, ?)`, id, nullableTime(t))
	} else {
		res, err = s.q.ExecContext(ctx, `INSERT INTO "`+meta.Table+`" (datetime) VALUES (?)`, nullableTime(t))
	}
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", meta.ModelName, classify(err, meta))
	}
	return res.LastInsertId()
}

func (s *Store) updateTimestamp(ctx context.Context, meta model.Meta, id int64, t time.Time) error {
	res, err := s.q.ExecContext(ctx, `UPDATE "`+meta.Table+`" SET datetime = ? WHERE id = ?`, nullableTime(t), id)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", meta.ModelName, id, classify(err, meta))
	}
	return requireAffected(res, meta, id)
}

func (s *Store) getTimestamp(ctx context.Context, meta model.Meta, id int64) (time.Time, error) {
	var raw string
	err := s.q.QueryRowContext(ctx, `SELECT datetime FROM "`+meta.Table+`" WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, &NotFoundError{Model: meta.ModelName, ID: id}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get %s %d: %w", meta.ModelName, id, err)
	}
	return s.parseTime(raw)
}

func (s *Store) listTimestamps(ctx context.Context, meta model.Meta, opts ListOptions, fn func(int64, time.Time)) error {
	limit, args := opts.clause()
	rows, err := s.q.QueryContext(ctx, `SELECT id, datetime FROM "`+meta.Table+`"`+opts.orderBy()+limit, args...)
	if err != nil {
		return fmt.Errorf("list %s: %w", meta.ModelName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return err
		}
		t, err := s.parseTime(raw)
		if err != nil {
			return err
		}
		fn(id, t)
	}
	return rows.Err()
}
