package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/title-review-api/internal/model"
)

// CategoryRepo provides persistence for categories. Categories are flat
// records addressed by slug; there is no update operation, matching the
// create/list/delete surface of the API.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category. Name and slug are both unique; either
// collision surfaces as ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, name, slug string) (model.Category, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, slug) VALUES (?,?)", name, slug)
	if err != nil {
		if isDuplicate(err) {
			return model.Category{}, ErrConflict
		}
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return model.Category{ID: uint64(id), Name: name, Slug: slug}, nil
}

// GetBySlug fetches one category by its slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,slug FROM categories WHERE slug=? LIMIT 1", slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return c, err
}

// List returns categories ordered by name, optionally filtered by a
// case-insensitive name substring, with the total count for pagination.
func (r *CategoryRepo) List(ctx context.Context, search string, limit, offset int) ([]model.Category, int64, error) {
	cond := "1=1"
	args := []any{}
	if search != "" {
		cond = "LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,slug FROM categories WHERE "+cond+" ORDER BY name LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Category, 0, limit)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// DeleteBySlug removes a category. Titles referencing it keep existing
// with a nulled category (ON DELETE SET NULL).
func (r *CategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE slug=?", slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
