package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andri/pocs/pkg/model"
)

// ProductQuery selects products by release date. Nil fields do not filter.
type ProductQuery struct {
	Month *int
	Year  *int
	ListOptions
}

func (q ProductQuery) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Month != nil {
		conds = append(conds, `CAST(strftime('%m', release_date) AS INTEGER) = ?`)
		args = append(args, *q.Month)
	}
	if q.Year != nil {
		conds = append(conds, `CAST(strftime('%Y', release_date) AS INTEGER) = ?`)
		args = append(args, *q.Year)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ProductRepository reads and writes Product rows.
type ProductRepository struct {
	s *Store
}

const productColumns = "id, name, description, release_date"

// Create inserts p and sets its ID.
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	meta := model.ProductMeta()
	var (
		res sql.Result
		err error
	)
	if p.ID != 0 {
		res, err = r.s.q.ExecContext(ctx,
			`INSERT INTO "`+meta.Table+`" (id, name, description, release_date) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, nullableDate(p.ReleaseDate))
	} else {
		res, err = r.s.q.ExecContext(ctx,
			`INSERT INTO "`+meta.Table+`" (name, description, release_date) VALUES (?, ?, ?)`,
			p.Name, p.Description, nullableDate(p.ReleaseDate))
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", classify(err, meta))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Save inserts p when it has no ID and updates it otherwise.
func (r *ProductRepository) Save(ctx context.Context, p *model.Product) error {
	if p.ID == 0 {
		return r.Create(ctx, p)
	}
	return r.Update(ctx, p)
}

// Update writes p's fields to its existing row.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	meta := model.ProductMeta()
	res, err := r.s.q.ExecContext(ctx,
		`UPDATE "`+meta.Table+`" SET name = ?, description = ?, release_date = ? WHERE id = ?`,
		p.Name, p.Description, nullableDate(p.ReleaseDate), p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, classify(err, meta))
	}
	return requireAffected(res, meta, p.ID)
}

// Get loads the Product with the given id.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	meta := model.ProductMeta()
	row := r.s.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM "`+meta.Table+`" WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Model: meta.ModelName, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// List returns products ordered by id.
func (r *ProductRepository) List(ctx context.Context, opts ListOptions) ([]model.Product, error) {
	return r.Filter(ctx, ProductQuery{ListOptions: opts})
}

// Filter returns the products matching q, ordered by id.
func (r *ProductRepository) Filter(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	where, args := q.where()
	limit, limitArgs := q.clause()
	args = append(args, limitArgs...)

	rows, err := r.s.q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM "`+model.ProductMeta().Table+`"`+where+q.orderBy()+limit, args...)
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, model.ProductMeta().Table, "")
}

// CountFiltered returns the number of products matching q, ignoring its
// limit and offset.
func (r *ProductRepository) CountFiltered(ctx context.Context, q ProductQuery) (int, error) {
	where, args := q.where()
	return r.s.count(ctx, model.ProductMeta().Table, where, args...)
}

// Delete removes the Product with the given id.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return r.s.deleteByID(ctx, model.ProductMeta(), id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p   model.Product
		raw string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &raw); err != nil {
		return nil, err
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", p.ID, err)
	}
	p.ReleaseDate = d
	return &p, nil
}
