package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/config"
	"github.com/iliyamo/title-review-api/internal/middleware"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/queue"
	"github.com/iliyamo/title-review-api/internal/repository"
	queue_publisher "github.com/iliyamo/title-review-api/internal/service"
	"github.com/iliyamo/title-review-api/internal/utils"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// AuthHandler bundles dependencies for signup, token exchange and the
// self-service profile endpoints. Publish dispatches the confirmation
// email event; it defaults to the broker publisher.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Publish func(context.Context, queue.ConfirmationEmailEvent) error
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	if u == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: u, Publish: queue_publisher.PublishConfirmationEmail}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type tokenReq struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

type userResp struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

// Signup handles POST /v1/auth/signup. Registration is idempotent: the
// same (username, email) pair always answers 200 and rotates the
// confirmation code; a collision with a different existing record is a
// conflict. The code is emailed through the broker, best effort.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email required"})
	}
	if err := model.ValidateUsername(req.Username); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !usernameRegex.MatchString(req.Username) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid username"})
	}
	if !emailRegex.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if u.Email != req.Email {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		// Same pair: fall through and rotate the code.
	case errors.Is(err, repository.ErrNotFound):
		if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		} else if !errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		u, err = h.Users.Create(ctx, req.Username, req.Email)
		if err != nil {
			// A concurrent signup may have won the race.
			if errors.Is(err, repository.ErrUsernameExists) || errors.Is(err, repository.ErrEmailExists) {
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	code, err := utils.NewConfirmationCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	hash, err := utils.HashCode(code, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	if err := h.Users.SetConfirmationCode(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store code failed"})
	}

	// Best effort: a lost email never fails the signup response.
	_ = h.Publish(c.Request().Context(), queue.ConfirmationEmailEvent{
		Username: u.Username,
		Email:    u.Email,
		Code:     code,
		IssuedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, signupReq{Email: u.Email, Username: u.Username})
}

// Token handles POST /v1/auth/token: exchanges a confirmation code for
// an access token. Codes are single use; the stored hash is cleared on
// success.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" || req.ConfirmationCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/confirmation_code required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !utils.VerifyCode(u.ConfirmationCode, req.ConfirmationCode) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid confirmation code"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Users.ClearConfirmationCode(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": access.Token})
}

// Me handles GET /v1/users/me.
func (h *AuthHandler) Me(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

type selfPatchReq struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	// A role field in the payload is accepted and ignored: actors never
	// change their own role.
	Role *string `json:"role"`
}

// UpdateMe handles PATCH /v1/users/me with partial profile updates.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req selfPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email != nil && !emailRegex.MatchString(strings.ToLower(strings.TrimSpace(*req.Email))) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, actor.ID, repository.ProfilePatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}
