package model

import (
	"errors"
	"fmt"
	"time"
)

// Score bounds for reviews, inclusive on both ends.
const (
	ScoreMin = 0
	ScoreMax = 10
)

var (
	// ErrReservedUsername rejects the one name that collides with the
	// /users/me route.
	ErrReservedUsername = errors.New("username 'me' is reserved")
	// ErrScoreOutOfRange rejects review scores outside [0,10].
	ErrScoreOutOfRange = fmt.Errorf("score must be between %d and %d", ScoreMin, ScoreMax)
)

// ValidateUsername checks the signup username against reserved names.
func ValidateUsername(username string) error {
	if username == "me" {
		return ErrReservedUsername
	}
	return nil
}

// ValidateYear rejects years after the current one. Works from the future
// cannot be reviewed yet.
func ValidateYear(year int) error {
	if now := time.Now().UTC().Year(); year > now {
		return fmt.Errorf("year %d is in the future", year)
	}
	return nil
}

// ValidateScore checks the inclusive [0,10] range.
func ValidateScore(score int) error {
	if score < ScoreMin || score > ScoreMax {
		return ErrScoreOutOfRange
	}
	return nil
}
