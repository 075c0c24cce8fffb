package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/title-review-api/internal/model"
)

// TitleRepo provides persistence for titles, their genre links and the
// read-time rating aggregate. The rating is recomputed by the store on
// every read (AVG over review scores) and is never cached here.
type TitleRepo struct{ DB *sql.DB }

func NewTitleRepo(db *sql.DB) *TitleRepo { return &TitleRepo{DB: db} }

// TitleDetail is the read model for a title: the row itself plus its
// resolved category, genres and average rating. Rating is nil when the
// title has no reviews; it must never collapse to zero.
type TitleDetail struct {
	model.Title
	Rating   *float64
	Category *model.Category
	Genres   []model.Genre
}

// TitleFilter holds the optional, AND-combined list filters plus
// pagination. Zero values mean "not supplied".
type TitleFilter struct {
	Name         string // case-insensitive substring on titles.name
	Year         *int   // exact release year
	CategorySlug string // exact category slug
	GenreSlug    string // exact genre slug
	Page         int
	PageSize     int
}

// buildTitleWhere assembles the WHERE condition and arguments for a
// filtered title query. Kept as a separate function so the clause
// assembly is testable without a database.
func buildTitleWhere(f TitleFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Name != "" {
		where = append(where, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Year != nil {
		where = append(where, "t.year = ?")
		args = append(args, *f.Year)
	}
	if f.CategorySlug != "" {
		where = append(where, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.GenreSlug != "" {
		where = append(where, "EXISTS (SELECT 1 FROM genre_title gt JOIN genres g ON g.id = gt.genre_id WHERE gt.title_id = t.id AND g.slug = ?)")
		args = append(args, f.GenreSlug)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// nullableFloat converts an SQL aggregate into the pointer form handlers
// serialize. NULL (no reviews) stays nil rather than becoming 0.
func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

const titleSelect = `SELECT
		t.id, t.name, t.year, t.description, t.category_id,
		c.name, c.slug,
		(SELECT AVG(r.score) FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

// scanTitleRow scans one row of titleSelect into a TitleDetail without
// genres (attached afterwards).
func scanTitleRow(row interface{ Scan(...any) error }) (TitleDetail, error) {
	var (
		d       TitleDetail
		catID   sql.NullInt64
		catName sql.NullString
		catSlug sql.NullString
		rating  sql.NullFloat64
	)
	err := row.Scan(&d.ID, &d.Name, &d.Year, &d.Description, &catID, &catName, &catSlug, &rating)
	if err != nil {
		return TitleDetail{}, err
	}
	if catID.Valid {
		id := uint64(catID.Int64)
		d.CategoryID = &id
		d.Category = &model.Category{ID: id, Name: catName.String, Slug: catSlug.String}
	}
	d.Rating = nullableFloat(rating)
	d.Genres = []model.Genre{}
	return d, nil
}

// GetDetail fetches one title with category, genres and rating.
func (r *TitleRepo) GetDetail(ctx context.Context, id uint64) (TitleDetail, error) {
	d, err := scanTitleRow(r.DB.QueryRowContext(ctx, titleSelect+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return TitleDetail{}, ErrNotFound
	}
	if err != nil {
		return TitleDetail{}, err
	}
	if err := r.attachGenres(ctx, []*TitleDetail{&d}); err != nil {
		return TitleDetail{}, err
	}
	return d, nil
}

// Exists reports whether a title row exists, without loading the detail.
func (r *TitleRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM titles WHERE id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Search lists titles matching the filter with the total count. Genres
// are loaded in one follow-up query to avoid row multiplication.
func (r *TitleRepo) Search(ctx context.Context, f TitleFilter) ([]TitleDetail, int64, error) {
	cond, args := buildTitleWhere(f)

	var total int64
	countSQL := "SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	offset := (f.Page - 1) * f.PageSize
	rows, err := r.DB.QueryContext(ctx,
		titleSelect+" WHERE "+cond+" ORDER BY t.id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	details := make([]TitleDetail, 0, limit)
	for rows.Next() {
		d, err := scanTitleRow(rows)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	refs := make([]*TitleDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.attachGenres(ctx, refs); err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// attachGenres loads the genre lists for the given titles in one query.
// Join rows with a nulled genre (deleted genre) are skipped.
func (r *TitleRepo) attachGenres(ctx context.Context, details []*TitleDetail) error {
	if len(details) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(details)), ",")
	args := make([]any, 0, len(details))
	byID := make(map[uint64]*TitleDetail, len(details))
	for _, d := range details {
		args = append(args, d.ID)
		byID[d.ID] = d
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT gt.title_id, g.id, g.name, g.slug
		 FROM genre_title gt
		 JOIN genres g ON g.id = gt.genre_id
		 WHERE gt.title_id IN (`+placeholders+`)
		 ORDER BY g.name`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var titleID uint64
		var g model.Genre
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return err
		}
		if d, ok := byID[titleID]; ok {
			d.Genres = append(d.Genres, g)
		}
	}
	return rows.Err()
}

// Create inserts a title and its genre links in one transaction and
// returns the stored detail.
func (r *TitleRepo) Create(ctx context.Context, name string, year int, description string, categoryID *uint64, genreIDs []uint64) (TitleDetail, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return TitleDetail{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES (?,?,?,?)",
		name, year, description, categoryID)
	if err != nil {
		return TitleDetail{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return TitleDetail{}, err
	}
	if err := insertGenreLinks(ctx, tx, uint64(id), genreIDs); err != nil {
		return TitleDetail{}, err
	}
	if err := tx.Commit(); err != nil {
		return TitleDetail{}, err
	}
	return r.GetDetail(ctx, uint64(id))
}

// TitlePatch holds optional fields for partial title updates. CategorySet
// distinguishes "set to NULL" from "leave unchanged"; GenreIDs replaces
// the whole genre set when non-nil.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	CategorySet bool
	CategoryID  *uint64
	GenreIDs    *[]uint64
}

// Update applies a partial update, replacing the genre link set when the
// patch carries one.
func (r *TitleRepo) Update(ctx context.Context, id uint64, p TitlePatch) (TitleDetail, error) {
	if _, err := r.GetDetail(ctx, id); err != nil {
		return TitleDetail{}, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return TitleDetail{}, err
	}
	defer func() { _ = tx.Rollback() }()

	set := []string{}
	args := []any{}
	if p.Name != nil {
		set = append(set, "name=?")
		args = append(args, *p.Name)
	}
	if p.Year != nil {
		set = append(set, "year=?")
		args = append(args, *p.Year)
	}
	if p.Description != nil {
		set = append(set, "description=?")
		args = append(args, *p.Description)
	}
	if p.CategorySet {
		set = append(set, "category_id=?")
		args = append(args, p.CategoryID)
	}
	if len(set) > 0 {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, "UPDATE titles SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return TitleDetail{}, err
		}
	}

	if p.GenreIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM genre_title WHERE title_id=?", id); err != nil {
			return TitleDetail{}, err
		}
		if err := insertGenreLinks(ctx, tx, id, *p.GenreIDs); err != nil {
			return TitleDetail{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return TitleDetail{}, err
	}
	return r.GetDetail(ctx, id)
}

// Delete removes a title. Join rows and reviews cascade at the store
// level.
func (r *TitleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM titles WHERE id=?", id)
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

// insertGenreLinks bulk-inserts genre_title rows for one title.
func insertGenreLinks(ctx context.Context, tx *sql.Tx, titleID uint64, genreIDs []uint64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	query := "INSERT INTO genre_title (title_id, genre_id) VALUES "
	args := make([]any, 0, len(genreIDs)*2)
	for i, g := range genreIDs {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, titleID, g)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
