package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/title-review-api/internal/model"
)

// CommentRepo provides persistence for comments on reviews. There is no
// uniqueness constraint: an author may comment on the same review any
// number of times.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// CommentRow is a comment joined with its author's username.
type CommentRow struct {
	model.Comment
	Author string
}

const commentSelect = `SELECT c.id, c.review_id, c.author_id, c.text, c.pub_date, u.username
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func scanCommentRow(row interface{ Scan(...any) error }) (CommentRow, error) {
	var cm CommentRow
	err := row.Scan(&cm.ID, &cm.ReviewID, &cm.AuthorID, &cm.Text, &cm.PubDate, &cm.Author)
	return cm, err
}

// Create inserts a comment under the given review.
func (r *CommentRepo) Create(ctx context.Context, reviewID, authorID uint64, text string) (CommentRow, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (review_id, author_id, text) VALUES (?,?,?)",
		reviewID, authorID, text)
	if err != nil {
		return CommentRow{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CommentRow{}, err
	}
	return r.GetByID(ctx, reviewID, uint64(id))
}

// GetByID fetches one comment scoped to its review.
func (r *CommentRepo) GetByID(ctx context.Context, reviewID, commentID uint64) (CommentRow, error) {
	cm, err := scanCommentRow(r.DB.QueryRowContext(ctx,
		commentSelect+" WHERE c.id=? AND c.review_id=? LIMIT 1", commentID, reviewID))
	if errors.Is(err, sql.ErrNoRows) {
		return CommentRow{}, ErrNotFound
	}
	return cm, err
}

// ListByReview returns comments for a review ordered by publication date.
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID uint64, limit, offset int) ([]CommentRow, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE review_id=?", reviewID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		commentSelect+" WHERE c.review_id=? ORDER BY c.pub_date, c.id LIMIT ? OFFSET ?",
		reviewID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]CommentRow, 0, limit)
	for rows.Next() {
		cm, err := scanCommentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, cm)
	}
	return out, total, rows.Err()
}

// Update changes the comment text; pub_date stays untouched.
func (r *CommentRepo) Update(ctx context.Context, reviewID, commentID uint64, text string) (CommentRow, error) {
	if _, err := r.GetByID(ctx, reviewID, commentID); err != nil {
		return CommentRow{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET text=? WHERE id=?", text, commentID); err != nil {
		return CommentRow{}, err
	}
	return r.GetByID(ctx, reviewID, commentID)
}

// Delete removes a comment.
func (r *CommentRepo) Delete(ctx context.Context, reviewID, commentID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE id=? AND review_id=?", commentID, reviewID)
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
