package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/config"
)

func TestPayloadRoundTrip(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	body := []byte(`{"count":0,"results":[]}`)

	payload, err := encodePayload(http.StatusOK, header, body)
	require.NoError(t, err)

	status, gotHeader, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload(nil)
	assert.False(t, ok)

	_, _, _, ok = decodePayload([]byte("short"))
	assert.False(t, ok)

	// Header length pointing past the end of the buffer.
	payload, err := encodePayload(200, http.Header{}, []byte("x"))
	require.NoError(t, err)
	_, _, _, ok = decodePayload(payload[:9])
	assert.False(t, ok)
}

func TestCacheKeyVariesByRouteAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache"}
	e := echo.New()

	key := func(path, query string) string {
		req := httptest.NewRequest(http.MethodGet, path+"?"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return cacheKey(cfg, c)
	}

	a := key("/v1/titles", "year=1999")
	b := key("/v1/titles", "year=2000")
	d := key("/v1/genres", "year=1999")

	assert.True(t, strings.HasPrefix(a, "cache:"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, d)
	assert.Equal(t, a, key("/v1/titles", "year=1999"))
}

func TestResponseCacheDisabledIsPassThrough(t *testing.T) {
	mw := ResponseCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/titles", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCaptureWriterHonorsLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, err := cw.Write([]byte("abcdef"))
	require.NoError(t, err)

	// The client gets everything; the capture buffer stops at the limit.
	assert.Equal(t, "abcdef", rec.Body.String())
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(6), cw.size)
}
