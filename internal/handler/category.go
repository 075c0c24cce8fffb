package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/repository"
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CategoryHandler serves the category classifier endpoints. Reads are
// public; create and delete sit behind the admin gate in the router.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	if r == nil {
		panic("nil repository passed to NewCategoryHandler")
	}
	return &CategoryHandler{Categories: r}
}

type classifierReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type classifierResp struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// validateClassifier trims and checks a name/slug payload shared by
// categories and genres.
func validateClassifier(req *classifierReq) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Name == "" || req.Slug == "" {
		return "name/slug required"
	}
	if len(req.Name) > 256 || len(req.Slug) > 50 {
		return "name or slug too long"
	}
	if !slugRegex.MatchString(req.Slug) {
		return "slug may contain only letters, digits, hyphens and underscores"
	}
	return ""
}

// List handles GET /v1/categories with optional ?search= on the name.
func (h *CategoryHandler) List(c echo.Context) error {
	page, size := pagination(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	cats, total, err := h.Categories.List(ctx, c.QueryParam("search"), size, (page-1)*size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]classifierResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, classifierResp{Name: cat.Name, Slug: cat.Slug})
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: out})
}

// Get handles GET /v1/categories/:slug.
func (h *CategoryHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	cat, err := h.Categories.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, classifierResp{Name: cat.Name, Slug: cat.Slug})
}

// Create handles POST /v1/categories.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req classifierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateClassifier(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	cat, err := h.Categories.Create(ctx, req.Name, req.Slug)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, classifierResp{Name: cat.Name, Slug: cat.Slug})
}

// Delete handles DELETE /v1/categories/:slug. Titles in the category
// survive with the reference nulled.
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Categories.DeleteBySlug(ctx, c.Param("slug")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
