package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/utils"
)

const testSecret = "test-secret"

func newCtx(t *testing.T, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func signedToken(t *testing.T, u model.User) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, u, 15)
	require.NoError(t, err)
	return tok.Token
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	token := signedToken(t, model.User{ID: 9, Username: "reader", Role: model.RoleUser})
	c, _ := newCtx(t, "Bearer "+token)

	var seen model.Actor
	err := RequireAuth(testSecret)(func(c echo.Context) error {
		seen = ActorFrom(c)
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, uint64(9), seen.ID)
	assert.Equal(t, "reader", seen.Username)
	assert.True(t, seen.Authenticated)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	c, rec := newCtx(t, "")

	err := RequireAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	c, rec := newCtx(t, "Bearer garbage")

	err := RequireAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	c, _ := newCtx(t, "")

	var seen model.Actor
	err := OptionalAuth(testSecret)(func(c echo.Context) error {
		seen = ActorFrom(c)
		return nil
	})(c)

	require.NoError(t, err)
	assert.False(t, seen.Authenticated)
}

func TestOptionalAuthStillRejectsInvalidToken(t *testing.T) {
	c, rec := newCtx(t, "Bearer expired-or-garbage")

	err := OptionalAuth(testSecret)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	run := func(a model.Actor) int {
		c, rec := newCtx(t, "")
		c.Set(actorKey, a)
		err := RequireAdmin()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		require.NoError(t, err)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, run(model.Actor{ID: 1, Role: model.RoleUser, Authenticated: true}))
	assert.Equal(t, http.StatusForbidden, run(model.Actor{ID: 2, Role: model.RoleModerator, Authenticated: true}))
	assert.Equal(t, http.StatusOK, run(model.Actor{ID: 3, Role: model.RoleAdmin, Authenticated: true}))
	assert.Equal(t, http.StatusOK, run(model.Actor{ID: 4, Role: model.RoleUser, Superuser: true, Authenticated: true}))
}
