package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/handler"
	"github.com/iliyamo/title-review-api/internal/middleware"
)

// RegisterFeedback registers the write endpoints for reviews and
// comments. Any authenticated actor may create; edits and deletes are
// decided per resource in the handlers (author, moderator or admin).
func RegisterFeedback(e *echo.Echo, rev *handler.ReviewHandler, com *handler.CommentHandler, jwtSecret string) {
	g := e.Group("/v1/titles/:title_id/reviews")
	g.Use(middleware.RequireAuth(jwtSecret))

	g.POST("", rev.Create)
	g.PATCH("/:review_id", rev.Update)
	g.DELETE("/:review_id", rev.Delete)

	g.POST("/:review_id/comments", com.Create)
	g.PATCH("/:review_id/comments/:comment_id", com.Update)
	g.DELETE("/:review_id/comments/:comment_id", com.Delete)
}
