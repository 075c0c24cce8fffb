package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Pagination defaults shared by every list endpoint.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination parses ?page= and ?page_size= with defaults and caps.
// Pages are 1-based.
func pagination(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// parseID parses a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// dbCtx derives a bounded context for repository calls from the request.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// listResponse is the envelope for paginated collections.
type listResponse struct {
	Count   int64 `json:"count"`
	Results any   `json:"results"`
}
