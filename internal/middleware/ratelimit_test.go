package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/config"
	"github.com/iliyamo/title-review-api/internal/model"
)

func TestTokenBucketWithoutRedisIsPassThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/titles", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
}

func TestRateKeyScopesByClientAndRoute(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}
	e := echo.New()

	newCtx := func(method, path string) echo.Context {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "10.0.0.1:12345"
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return c
	}

	key := rateKey(cfg, newCtx(http.MethodGet, "/v1/titles"))
	assert.Equal(t, "rl:10.0.0.1:GET /v1/titles", key)

	// Different route, different bucket.
	other := rateKey(cfg, newCtx(http.MethodGet, "/v1/genres"))
	assert.NotEqual(t, key, other)

	// The limiter runs before auth, so an actor in the context must not
	// change the bucket.
	c := newCtx(http.MethodGet, "/v1/titles")
	c.Set("actor", model.Actor{ID: 7, Authenticated: true})
	assert.Equal(t, key, rateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64(5))
	assert.Equal(t, int64(5), asInt64(5.9))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}
