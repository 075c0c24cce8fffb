package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/handler"
	"github.com/iliyamo/title-review-api/internal/middleware"
)

// RegisterPublic registers the read endpoints open to everyone: the
// whole catalog plus reviews and comments. A token is optional here, but
// a presented invalid token is still rejected. cacheMW, when non-nil, is
// the Redis response cache applied to these GETs only; it never serves a
// request that carries an Authorization header.
func RegisterPublic(e *echo.Echo, cat *handler.CategoryHandler, gen *handler.GenreHandler, tit *handler.TitleHandler, rev *handler.ReviewHandler, com *handler.CommentHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cacheMW != nil {
		g.Use(cacheMW)
	}
	g.Use(middleware.OptionalAuth(jwtSecret))

	g.GET("/categories", cat.List)
	g.GET("/categories/:slug", cat.Get)

	g.GET("/genres", gen.List)
	g.GET("/genres/:slug", gen.Get)

	g.GET("/titles", tit.List)
	g.GET("/titles/:title_id", tit.Get)

	g.GET("/titles/:title_id/reviews", rev.List)
	g.GET("/titles/:title_id/reviews/:review_id", rev.Get)

	g.GET("/titles/:title_id/reviews/:review_id/comments", com.List)
	g.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", com.Get)
}
