package model

// Category is a type of work (books, films, music). A title belongs to at
// most one category; deleting the category nulls the reference on its
// titles instead of cascading.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name (unique)
	Slug string // categories.slug (unique, URL-safe)
}

// Genre is a flat tag attached to titles through the genre_title join
// table. One title may carry several genres.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name (unique)
	Slug string // genres.slug (unique)
}

// Title is a reviewable work.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the work.
//  Year        – release year; must not be in the future.
//  Description – optional free text.
//  CategoryID  – nullable reference into categories.
type Title struct {
	ID          uint64
	Name        string
	Year        int
	Description string
	CategoryID  *uint64
}

// GenreTitle mirrors the genre_title join table. The genre side is
// nullable so genre deletion keeps the row.
type GenreTitle struct {
	ID      uint64
	TitleID uint64
	GenreID *uint64
}
