package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/repository"
)

// GenreHandler serves the genre classifier endpoints, mirroring the
// category surface.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

func NewGenreHandler(r *repository.GenreRepo) *GenreHandler {
	if r == nil {
		panic("nil repository passed to NewGenreHandler")
	}
	return &GenreHandler{Genres: r}
}

// List handles GET /v1/genres with optional ?search= on the name.
func (h *GenreHandler) List(c echo.Context) error {
	page, size := pagination(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	genres, total, err := h.Genres.List(ctx, c.QueryParam("search"), size, (page-1)*size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]classifierResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, classifierResp{Name: g.Name, Slug: g.Slug})
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: out})
}

// Get handles GET /v1/genres/:slug.
func (h *GenreHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	g, err := h.Genres.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, classifierResp{Name: g.Name, Slug: g.Slug})
}

// Create handles POST /v1/genres.
func (h *GenreHandler) Create(c echo.Context) error {
	var req classifierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateClassifier(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	g, err := h.Genres.Create(ctx, req.Name, req.Slug)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create genre failed"})
	}
	return c.JSON(http.StatusCreated, classifierResp{Name: g.Name, Slug: g.Slug})
}

// Delete handles DELETE /v1/genres/:slug. Titles keep their remaining
// genres; only the join rows lose this one.
func (h *GenreHandler) Delete(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Genres.DeleteBySlug(ctx, c.Param("slug")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "genre not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
