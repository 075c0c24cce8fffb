package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// TitleHandler serves the title catalog. It resolves category and genre
// slugs from write payloads before touching the title store, so bad
// references fail with 400 instead of a foreign key error.
type TitleHandler struct {
	Titles     *repository.TitleRepo
	Categories *repository.CategoryRepo
	Genres     *repository.GenreRepo
}

func NewTitleHandler(t *repository.TitleRepo, c *repository.CategoryRepo, g *repository.GenreRepo) *TitleHandler {
	if t == nil || c == nil || g == nil {
		panic("nil repository passed to NewTitleHandler")
	}
	return &TitleHandler{Titles: t, Categories: c, Genres: g}
}

type titleWriteReq struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type titleResp struct {
	ID          uint64           `json:"id"`
	Name        string           `json:"name"`
	Year        int              `json:"year"`
	Rating      *float64         `json:"rating"`
	Description string           `json:"description"`
	Genre       []classifierResp `json:"genre"`
	Category    *classifierResp  `json:"category"`
}

func toTitleResp(d repository.TitleDetail) titleResp {
	out := titleResp{
		ID:          d.ID,
		Name:        d.Name,
		Year:        d.Year,
		Rating:      d.Rating,
		Description: d.Description,
		Genre:       make([]classifierResp, 0, len(d.Genres)),
	}
	for _, g := range d.Genres {
		out.Genre = append(out.Genre, classifierResp{Name: g.Name, Slug: g.Slug})
	}
	if d.Category != nil {
		out.Category = &classifierResp{Name: d.Category.Name, Slug: d.Category.Slug}
	}
	return out
}

// List handles GET /v1/titles. Filters combine with AND: ?name= is a
// case-insensitive substring, ?year= is exact, ?category= and ?genre=
// are exact slugs.
func (h *TitleHandler) List(c echo.Context) error {
	page, size := pagination(c)

	f := repository.TitleFilter{
		Name:         c.QueryParam("name"),
		CategorySlug: c.QueryParam("category"),
		GenreSlug:    c.QueryParam("genre"),
		Page:         page,
		PageSize:     size,
	}
	if raw := c.QueryParam("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year filter"})
		}
		f.Year = &y
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	details, total, err := h.Titles.Search(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]titleResp, 0, len(details))
	for _, d := range details {
		out = append(out, toTitleResp(d))
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: out})
}

// Get handles GET /v1/titles/:title_id.
func (h *TitleHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Titles.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toTitleResp(d))
}

// resolveRefs turns the slug references of a write payload into row ids.
// Unknown slugs answer a 400 through the returned message.
func (h *TitleHandler) resolveRefs(c echo.Context, req titleWriteReq) (categoryID *uint64, genreIDs []uint64, msg string, err error) {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if req.Category != nil && *req.Category != "" {
		cat, err := h.Categories.GetBySlug(ctx, *req.Category)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, "unknown category slug", nil
		}
		if err != nil {
			return nil, nil, "", err
		}
		categoryID = &cat.ID
	}
	if req.Genre != nil {
		genres, err := h.Genres.GetBySlugs(ctx, *req.Genre)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, "unknown genre slug", nil
		}
		if err != nil {
			return nil, nil, "", err
		}
		genreIDs = make([]uint64, 0, len(genres))
		for _, g := range genres {
			genreIDs = append(genreIDs, g.ID)
		}
		// A repeated slug in the payload collapses to one link instead of
		// tripping the unique key on genre_title.
		genreIDs = dedupeIDs(genreIDs)
	}
	return categoryID, genreIDs, "", nil
}

// dedupeIDs removes repeated ids while keeping first-seen order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Create handles POST /v1/titles.
func (h *TitleHandler) Create(c echo.Context) error {
	var req titleWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.Year == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/year required"})
	}
	if err := model.ValidateYear(*req.Year); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	categoryID, genreIDs, msg, err := h.resolveRefs(c, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	desc := ""
	if req.Description != nil {
		desc = *req.Description
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Titles.Create(ctx, strings.TrimSpace(*req.Name), *req.Year, desc, categoryID, genreIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create title failed"})
	}
	return c.JSON(http.StatusCreated, toTitleResp(d))
}

// Update handles PATCH /v1/titles/:title_id. Absent fields stay as they
// are; a present genre list replaces the whole set.
func (h *TitleHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	var req titleWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Year != nil {
		if err := model.ValidateYear(*req.Year); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
	}

	categoryID, genreIDs, msg, err := h.resolveRefs(c, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	p := repository.TitlePatch{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}
	if req.Category != nil {
		// Empty string clears the category; a slug re-points it.
		p.CategorySet = true
		p.CategoryID = categoryID
	}
	if req.Genre != nil {
		p.GenreIDs = &genreIDs
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Titles.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update title failed"})
	}
	return c.JSON(http.StatusOK, toTitleResp(d))
}

// Delete handles DELETE /v1/titles/:title_id. Reviews and their comments
// cascade.
func (h *TitleHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Titles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
