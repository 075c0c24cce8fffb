package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/middleware"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/policy"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// ReviewHandler serves the review endpoints nested under a title. Every
// operation first checks the parent title exists, so review ids can
// never be addressed through the wrong title.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Titles  *repository.TitleRepo
}

func NewReviewHandler(r *repository.ReviewRepo, t *repository.TitleRepo) *ReviewHandler {
	if r == nil || t == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: r, Titles: t}
}

type reviewWriteReq struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type reviewResp struct {
	ID      uint64 `json:"id"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Score   int    `json:"score"`
	PubDate string `json:"pub_date"`
}

func toReviewResp(rv repository.ReviewRow) reviewResp {
	return reviewResp{
		ID:      rv.ID,
		Author:  rv.Author,
		Text:    rv.Text,
		Score:   rv.Score,
		PubDate: rv.PubDate.UTC().Format(time.RFC3339),
	}
}

// titleExists answers the 404 for a missing parent title.
func (h *ReviewHandler) titleExists(c echo.Context, id uint64) (bool, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()
	return h.Titles.Exists(ctx, id)
}

// List handles GET /v1/titles/:title_id/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	if exists, err := h.titleExists(c, titleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	} else if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}

	page, size := pagination(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	reviews, total, err := h.Reviews.ListByTitle(ctx, titleID, size, (page-1)*size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reviewResp, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewResp(rv))
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: out})
}

// Get handles GET /v1/titles/:title_id/reviews/:review_id.
func (h *ReviewHandler) Get(c echo.Context) error {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toReviewResp(rv))
}

// Create handles POST /v1/titles/:title_id/reviews. One review per
// author per title; a second attempt answers 409.
func (h *ReviewHandler) Create(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	titleID, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	var req reviewWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" || req.Score == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text/score required"})
	}
	if err := model.ValidateScore(*req.Score); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if exists, err := h.titleExists(c, titleID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	} else if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv, err := h.Reviews.Create(ctx, titleID, actor.ID, *req.Text, *req.Score)
	if err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already reviewed this title"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, toReviewResp(rv))
}

// Update handles PATCH /v1/titles/:title_id/reviews/:review_id. Allowed
// for the author, moderators and admins.
func (h *ReviewHandler) Update(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	titleID, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	}
	var req reviewWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score != nil {
		if err := model.ValidateScore(*req.Score); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text must not be empty"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if policy.Decide(actor, policy.VerbUpdate, policy.KindReview, rv.AuthorID) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to edit this review"})
	}

	rv, err = h.Reviews.Update(ctx, titleID, reviewID, req.Text, req.Score)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update review failed"})
	}
	return c.JSON(http.StatusOK, toReviewResp(rv))
}

// Delete handles DELETE /v1/titles/:title_id/reviews/:review_id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	titleID, ok := parseID(c, "title_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv, err := h.Reviews.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if policy.Decide(actor, policy.VerbDelete, policy.KindReview, rv.AuthorID) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to delete this review"})
	}

	if err := h.Reviews.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
