package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTitleWhereEmptyFilter(t *testing.T) {
	cond, args := buildTitleWhere(TitleFilter{})
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)
}

func TestBuildTitleWhereSingleFilters(t *testing.T) {
	cond, args := buildTitleWhere(TitleFilter{Name: "Blade"})
	assert.Equal(t, "LOWER(t.name) LIKE ?", cond)
	assert.Equal(t, []any{"%blade%"}, args)

	year := 1999
	cond, args = buildTitleWhere(TitleFilter{Year: &year})
	assert.Equal(t, "t.year = ?", cond)
	assert.Equal(t, []any{1999}, args)

	cond, args = buildTitleWhere(TitleFilter{CategorySlug: "movies"})
	assert.Equal(t, "c.slug = ?", cond)
	assert.Equal(t, []any{"movies"}, args)

	cond, args = buildTitleWhere(TitleFilter{GenreSlug: "noir"})
	assert.Contains(t, cond, "EXISTS")
	assert.Contains(t, cond, "g.slug = ?")
	assert.Equal(t, []any{"noir"}, args)
}

func TestBuildTitleWhereCombinesWithAnd(t *testing.T) {
	year := 2020
	cond, args := buildTitleWhere(TitleFilter{
		Name:         "Dune",
		Year:         &year,
		CategorySlug: "movies",
		GenreSlug:    "sci-fi",
	})
	assert.Equal(t,
		"LOWER(t.name) LIKE ? AND t.year = ? AND c.slug = ? AND EXISTS (SELECT 1 FROM genre_title gt JOIN genres g ON g.id = gt.genre_id WHERE gt.title_id = t.id AND g.slug = ?)",
		cond)
	assert.Equal(t, []any{"%dune%", 2020, "movies", "sci-fi"}, args)
}

func TestNullableFloat(t *testing.T) {
	// A title with no reviews has a NULL aggregate; it must stay nil and
	// never collapse to zero.
	assert.Nil(t, nullableFloat(sql.NullFloat64{}))

	got := nullableFloat(sql.NullFloat64{Float64: 7.5, Valid: true})
	if assert.NotNil(t, got) {
		assert.Equal(t, 7.5, *got)
	}

	zero := nullableFloat(sql.NullFloat64{Float64: 0, Valid: true})
	if assert.NotNil(t, zero) {
		assert.Equal(t, 0.0, *zero)
	}
}
