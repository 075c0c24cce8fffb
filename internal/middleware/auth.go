package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/utils"
)

// actorKey is the context key under which the request actor is stored.
const actorKey = "actor"

// ActorFrom returns the actor attached to the request. Routes without
// auth middleware yield the anonymous actor.
func ActorFrom(c echo.Context) model.Actor {
	if a, ok := c.Get(actorKey).(model.Actor); ok {
		return a
	}
	return model.Actor{}
}

// bearerActor parses the Authorization header into an actor. The second
// return value reports whether a bearer token was present at all.
func bearerActor(c echo.Context, secret string) (model.Actor, bool, error) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return model.Actor{}, false, nil
	}
	actor, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return model.Actor{}, true, err
	}
	return actor, true, nil
}

// RequireAuth validates a Bearer access token and stores the resulting
// actor in the context. Requests without a valid token are rejected with
// 401. Handlers downstream read the identity via ActorFrom.
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, present, err := bearerActor(c, secret)
			if !present {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// OptionalAuth attaches an actor when a valid token is present and the
// anonymous actor otherwise. Used on read routes that are open to
// everyone but still want to know who is asking. A present-but-invalid
// token is still rejected so clients notice expired sessions.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, present, err := bearerActor(c, secret)
			if present && err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// RequireAdmin aborts with 403 unless the actor holds the admin
// capability (admin role or superuser flag). Must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ActorFrom(c).Can(model.CapAdmin) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
