// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors. For example, ErrReviewExists signals that the
// one-review-per-author-per-title constraint fired, while ErrNotFound
// covers any referenced entity that is absent.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update violates a uniqueness
// constraint that has no more specific sentinel (category and genre name
// or slug). Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned when a signup collides with a different
// user's username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when a signup collides with a different
// user's email.
var ErrEmailExists = errors.New("email already exists")

// ErrReviewExists is returned when an author already has a review for the
// title. The unique key on (title_id, author_id) is the authoritative
// guard; this sentinel is how the violation surfaces.
var ErrReviewExists = errors.New("review already exists for this title")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). The string fallback covers drivers and proxies that wrap
// the error without preserving the number.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "1062")
}
