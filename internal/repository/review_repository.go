package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// ReviewRepo provides persistence for reviews. The unique key on
// (title_id, author_id) is the authoritative guard against duplicate
// reviews; the Exists pre-check in Create only produces a friendlier
// error before the insert races.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// ReviewRow is a review joined with its author's username for responses.
type ReviewRow struct {
	model.Review
	Author string
}

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, r.text, r.score, r.pub_date, u.username
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

func scanReviewRow(row interface{ Scan(...any) error }) (ReviewRow, error) {
	var rv ReviewRow
	err := row.Scan(&rv.ID, &rv.TitleID, &rv.AuthorID, &rv.Text, &rv.Score, &rv.PubDate, &rv.Author)
	return rv, err
}

// ExistsByTitleAuthor reports whether the author already reviewed the
// title.
func (r *ReviewRepo) ExistsByTitleAuthor(ctx context.Context, titleID, authorID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM reviews WHERE title_id=? AND author_id=? LIMIT 1",
		titleID, authorID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create inserts a review and returns the stored row. A duplicate-key
// violation from a concurrent insert is translated to ErrReviewExists,
// never leaked as a driver error.
func (r *ReviewRepo) Create(ctx context.Context, titleID, authorID uint64, text string, score int) (ReviewRow, error) {
	exists, err := r.ExistsByTitleAuthor(ctx, titleID, authorID)
	if err != nil {
		return ReviewRow{}, err
	}
	if exists {
		return ReviewRow{}, ErrReviewExists
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (title_id, author_id, text, score) VALUES (?,?,?,?)",
		titleID, authorID, text, score)
	if err != nil {
		if isDuplicate(err) {
			return ReviewRow{}, ErrReviewExists
		}
		return ReviewRow{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ReviewRow{}, err
	}
	return r.GetByID(ctx, titleID, uint64(id))
}

// GetByID fetches one review scoped to its title, so a review id from a
// different title reads as absent.
func (r *ReviewRepo) GetByID(ctx context.Context, titleID, reviewID uint64) (ReviewRow, error) {
	rv, err := scanReviewRow(r.DB.QueryRowContext(ctx,
		reviewSelect+" WHERE r.id=? AND r.title_id=? LIMIT 1", reviewID, titleID))
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewRow{}, ErrNotFound
	}
	return rv, err
}

// ListByTitle returns reviews for a title ordered by publication date.
func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID uint64, limit, offset int) ([]ReviewRow, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE title_id=?", titleID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		reviewSelect+" WHERE r.title_id=? ORDER BY r.pub_date, r.id LIMIT ? OFFSET ?",
		titleID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ReviewRow, 0, limit)
	for rows.Next() {
		rv, err := scanReviewRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}

// Update changes text and/or score. Ownership and target title never
// change, and pub_date stays untouched.
func (r *ReviewRepo) Update(ctx context.Context, titleID, reviewID uint64, text *string, score *int) (ReviewRow, error) {
	if _, err := r.GetByID(ctx, titleID, reviewID); err != nil {
		return ReviewRow{}, err
	}
	set := ""
	args := []any{}
	if text != nil {
		set = "text=?"
		args = append(args, *text)
	}
	if score != nil {
		if set != "" {
			set += ", "
		}
		set += "score=?"
		args = append(args, *score)
	}
	if set != "" {
		args = append(args, reviewID)
		if _, err := r.DB.ExecContext(ctx, "UPDATE reviews SET "+set+" WHERE id=?", args...); err != nil {
			return ReviewRow{}, err
		}
	}
	return r.GetByID(ctx, titleID, reviewID)
}

// Delete removes a review; its comments cascade at the store level.
func (r *ReviewRepo) Delete(ctx context.Context, titleID, reviewID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM reviews WHERE id=? AND title_id=?", reviewID, titleID)
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
