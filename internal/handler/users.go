package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/repository"
)

// UserAdminHandler implements the admin-only user management surface:
// listing, creating, inspecting, patching (including role changes) and
// deleting arbitrary users, addressed by username. The admin gate runs
// in middleware; these handlers assume it already passed.
type UserAdminHandler struct {
	Users *repository.UserRepo
}

func NewUserAdminHandler(u *repository.UserRepo) *UserAdminHandler {
	if u == nil {
		panic("nil repository passed to NewUserAdminHandler")
	}
	return &UserAdminHandler{Users: u}
}

type adminUserReq struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Role      *string `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

// List handles GET /v1/users.
func (h *UserAdminHandler) List(c echo.Context) error {
	page, size := pagination(c)

	ctx, cancel := dbCtx(c)
	defer cancel()

	users, total, err := h.Users.List(ctx, size, (page-1)*size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: out})
}

// Create handles POST /v1/users. Unlike signup there is no email round
// trip; the admin decides the role up front.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req adminUserReq
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
	if !usernameRegex.MatchString(req.Username) || !emailRegex.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid username or email"})
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	role := model.RoleUser
	if req.Role != nil {
		role = *req.Role
	}
	firstName, lastName, bio := "", "", ""
	if req.FirstName != nil {
		firstName = *req.FirstName
	}
	if req.LastName != nil {
		lastName = *req.LastName
	}
	if req.Bio != nil {
		bio = *req.Bio
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.CreateWithProfile(ctx, req.Username, req.Email, role, firstName, lastName, bio)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) || errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Get handles GET /v1/users/:username.
func (h *UserAdminHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update handles PATCH /v1/users/:username. This is the only place a
// role can change.
func (h *UserAdminHandler) Update(c echo.Context) error {
	var req adminUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	var email *string
	if req.Email != "" {
		e := strings.ToLower(strings.TrimSpace(req.Email))
		if !emailRegex.MatchString(e) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
		}
		email = &e
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.UpdateByAdmin(ctx, c.Param("username"), repository.ProfilePatch{
		Email:     email,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete handles DELETE /v1/users/:username. Reviews and comments by
// the user cascade away with the row.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("username")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
