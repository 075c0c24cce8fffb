package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/handler"
	"github.com/iliyamo/title-review-api/internal/middleware"
)

// RegisterAdmin registers the admin-only surfaces: user management and
// catalog writes. Every route here requires a valid token carrying the
// admin role or the superuser flag.
func RegisterAdmin(e *echo.Echo, users *handler.UserAdminHandler, cat *handler.CategoryHandler, gen *handler.GenreHandler, tit *handler.TitleHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.RequireAuth(jwtSecret))
	g.Use(middleware.RequireAdmin())

	g.GET("/users", users.List)
	g.POST("/users", users.Create)
	g.GET("/users/:username", users.Get)
	g.PATCH("/users/:username", users.Update)
	g.DELETE("/users/:username", users.Delete)

	g.POST("/categories", cat.Create)
	g.DELETE("/categories/:slug", cat.Delete)

	g.POST("/genres", gen.Create)
	g.DELETE("/genres/:slug", gen.Delete)

	g.POST("/titles", tit.Create)
	g.PATCH("/titles/:title_id", tit.Update)
	g.DELETE("/titles/:title_id", tit.Delete)
}
