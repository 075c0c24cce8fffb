package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/handler"
	"github.com/iliyamo/title-review-api/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently it exposes only a health check, used by load balancers and
// monitoring systems to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the signup flow and the self-service profile
// endpoints. Signup and token exchange are open; /v1/users/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// Signup emails a confirmation code; calling it again for the same
	// pair rotates the code.
	g.POST("/signup", a.Signup)
	// Token exchanges a confirmation code for a JWT access token.
	g.POST("/token", a.Token)

	me := e.Group("/v1/users/me")
	me.Use(middleware.RequireAuth(jwtSecret))
	me.GET("", a.Me)
	me.PATCH("", a.UpdateMe)
}
