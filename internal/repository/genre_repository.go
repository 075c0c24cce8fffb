package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/title-review-api/internal/model"
)

// GenreRepo provides persistence for genres. Same create/list/delete
// shape as categories; the difference is downstream, where genre deletion
// nulls join rows instead of title references.
type GenreRepo struct{ DB *sql.DB }

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{DB: db} }

// Create inserts a genre; name and slug collisions surface as ErrConflict.
func (r *GenreRepo) Create(ctx context.Context, name, slug string) (model.Genre, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO genres (name, slug) VALUES (?,?)", name, slug)
	if err != nil {
		if isDuplicate(err) {
			return model.Genre{}, ErrConflict
		}
		return model.Genre{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Genre{}, err
	}
	return model.Genre{ID: uint64(id), Name: name, Slug: slug}, nil
}

// GetBySlug fetches one genre by its slug.
func (r *GenreRepo) GetBySlug(ctx context.Context, slug string) (model.Genre, error) {
	var g model.Genre
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,slug FROM genres WHERE slug=? LIMIT 1", slug).
		Scan(&g.ID, &g.Name, &g.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Genre{}, ErrNotFound
	}
	return g, err
}

// GetBySlugs resolves several slugs at once, used when titles are written
// with a genre list. A missing slug yields ErrNotFound.
func (r *GenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error) {
	out := make([]model.Genre, 0, len(slugs))
	for _, s := range slugs {
		g, err := r.GetBySlug(ctx, s)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// List returns genres ordered by name with optional case-insensitive name
// substring filtering.
func (r *GenreRepo) List(ctx context.Context, search string, limit, offset int) ([]model.Genre, int64, error) {
	cond := "1=1"
	args := []any{}
	if search != "" {
		cond = "LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM genres WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,slug FROM genres WHERE "+cond+" ORDER BY name LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Genre, 0, limit)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// DeleteBySlug removes a genre. Join rows survive with genre_id set to
// NULL (ON DELETE SET NULL), so titles keep their remaining genres.
func (r *GenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM genres WHERE slug=?", slug)
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
