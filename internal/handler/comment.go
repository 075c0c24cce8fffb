package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/middleware"
	"github.com/iliyamo/title-review-api/internal/policy"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// CommentHandler serves comments nested two levels deep, under a review
// under a title. The review lookup is scoped by title id, so both path
// segments must match for the comment chain to resolve.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Reviews  *repository.ReviewRepo
}

func NewCommentHandler(cm *repository.CommentRepo, r *repository.ReviewRepo) *CommentHandler {
	if cm == nil || r == nil {
		panic("nil repository passed to NewCommentHandler")
	}
	return &CommentHandler{Comments: cm, Reviews: r}
}

type commentWriteReq struct {
	Text string `json:"text"`
}

type commentResp struct {
	ID      uint64 `json:"id"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	PubDate string `json:"pub_date"`
}

func toCommentResp(cm repository.CommentRow) commentResp {
	return commentResp{
		ID:      cm.ID,
		Author:  cm.Author,
		Text:    cm.Text,
		PubDate: cm.PubDate.UTC().Format(time.RFC3339),
	}
}

// resolveReview validates the title/review pair from the path. A miss on
// either answers 404 through the returned handled response.
func (h *CommentHandler) resolveReview(c echo.Context) (uint64, bool, error) {
	titleID, ok := parseID(c, "title_id")
	if !ok {
		return 0, false, c.JSON(http.StatusNotFound, echo.Map{"error": "title not found"})
	}
	reviewID, ok := parseID(c, "review_id")
	if !ok {
		return 0, false, c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Reviews.GetByID(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return 0, false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return reviewID, true, nil
}

// List handles GET /v1/titles/:title_id/reviews/:review_id/comments.
func (h *CommentHandler) List(c echo.Context) error {
	reviewID, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	page, size := pagination(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, total, err := h.Comments.ListByReview(ctx, reviewID, size, (page-1)*size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: out})
}

// Get handles GET .../comments/:comment_id.
func (h *CommentHandler) Get(c echo.Context) error {
	reviewID, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	commentID, okID := parseID(c, "comment_id")
	if !okID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toCommentResp(cm))
}

// Create handles POST .../comments. Any authenticated actor may comment,
// any number of times.
func (h *CommentHandler) Create(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req commentWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	reviewID, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	cm, err := h.Comments.Create(ctx, reviewID, actor.ID, req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, toCommentResp(cm))
}

// Update handles PATCH .../comments/:comment_id. Allowed for the author,
// moderators and admins.
func (h *CommentHandler) Update(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req commentWriteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	reviewID, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	commentID, okID := parseID(c, "comment_id")
	if !okID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if policy.Decide(actor, policy.VerbUpdate, policy.KindComment, cm.AuthorID) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to edit this comment"})
	}

	cm, err = h.Comments.Update(ctx, reviewID, commentID, req.Text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update comment failed"})
	}
	return c.JSON(http.StatusOK, toCommentResp(cm))
}

// Delete handles DELETE .../comments/:comment_id.
func (h *CommentHandler) Delete(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	reviewID, ok, err := h.resolveReview(c)
	if !ok {
		return err
	}
	commentID, okID := parseID(c, "comment_id")
	if !okID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if policy.Decide(actor, policy.VerbDelete, policy.KindComment, cm.AuthorID) != policy.Allow {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed to delete this comment"})
	}

	if err := h.Comments.Delete(ctx, reviewID, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
