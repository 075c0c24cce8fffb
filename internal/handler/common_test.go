package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/titles?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPaginationDefaults(t *testing.T) {
	page, size := pagination(ctxWithQuery(""))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)
}

func TestPaginationParsesAndClamps(t *testing.T) {
	page, size := pagination(ctxWithQuery("page=3&page_size=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	page, size = pagination(ctxWithQuery("page=-1&page_size=0"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)

	_, size = pagination(ctxWithQuery("page_size=5000"))
	assert.Equal(t, maxPageSize, size)

	page, size = pagination(ctxWithQuery("page=abc&page_size=xyz"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, size)
}

func TestParseID(t *testing.T) {
	e := echo.New()
	newCtx := func(v string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("title_id")
		c.SetParamValues(v)
		return c
	}

	id, ok := parseID(newCtx("42"), "title_id")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	_, ok = parseID(newCtx("0"), "title_id")
	assert.False(t, ok)

	_, ok = parseID(newCtx("-5"), "title_id")
	assert.False(t, ok)

	_, ok = parseID(newCtx("abc"), "title_id")
	assert.False(t, ok)

	_, ok = parseID(newCtx(""), "title_id")
	assert.False(t, ok)
}

func TestValidateClassifier(t *testing.T) {
	req := classifierReq{Name: " Books ", Slug: "books"}
	assert.Empty(t, validateClassifier(&req))
	assert.Equal(t, "Books", req.Name, "name is trimmed")

	req = classifierReq{Name: "", Slug: "x"}
	assert.NotEmpty(t, validateClassifier(&req))

	req = classifierReq{Name: "X", Slug: "bad slug!"}
	assert.NotEmpty(t, validateClassifier(&req))

	req = classifierReq{Name: "X", Slug: "ok-slug_1"}
	assert.Empty(t, validateClassifier(&req))
}
