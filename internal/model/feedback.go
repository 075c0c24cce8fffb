package model

import "time"

// Review is a single user's opinion on a title. The database enforces at
// most one review per (author, title) pair with a unique key; the
// repository's pre-check only produces a friendlier error earlier.
//
// Fields:
//  ID       – primary key identifier.
//  TitleID  – the reviewed title (CASCADE on title deletion).
//  AuthorID – the writing user (CASCADE on user deletion).
//  Text     – review body.
//  Score    – rating in [0,10] inclusive.
//  PubDate  – set at creation, immutable afterwards.
type Review struct {
	ID       uint64
	TitleID  uint64
	AuthorID uint64
	Text     string
	Score    int
	PubDate  time.Time
}

// Comment is attached to one review. Many comments per author per review
// are allowed; deletion of the review or the author cascades.
type Comment struct {
	ID       uint64
	ReviewID uint64
	AuthorID uint64
	Text     string
	PubDate  time.Time
}
