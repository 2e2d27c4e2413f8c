package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/repository"
	"github.com/iliyamo/dantour/internal/service"
)

// UserDirectory is implemented by *repository.UserRepo.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, p repository.UserProfile) error
	SetRole(ctx context.Context, id, role string) error
}

// UserHandler serves /api/v1/users.
type UserHandler struct {
	Users UserDirectory
}

func NewUserHandler(u UserDirectory) *UserHandler { return &UserHandler{Users: u} }

type profileReq struct {
	Username    *string `json:"username"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	ImageURL    *string `json:"image_url"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Address     *string `json:"address"`
	ZipCode     *string `json:"zip_code"`
	PhoneNumber *string `json:"phone_number"`
}

// Me: GET /users/me.
func (h *UserHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.User, error) {
		return h.Users.GetByID(ctx, uid)
	})
}

// UpdateMe: PUT /users/me.  Absent fields are kept.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return run(c, http.StatusOK, func(ctx context.Context) (model.User, error) {
		if err := h.Users.UpdateProfile(ctx, uid, repository.UserProfile(req)); err != nil {
			return model.User{}, err
		}
		return h.Users.GetByID(ctx, uid)
	})
}

// List: GET /users (admin).
func (h *UserHandler) List(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.User, error) {
		return h.Users.List(ctx)
	})
}

type setRoleReq struct {
	Role string `json:"role"`
}

// SetRole: PATCH /users/:id/role (admin).
func (h *UserHandler) SetRole(c echo.Context) error {
	var req setRoleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	switch role {
	case model.RoleCustomer, model.RoleHost, model.RoleAdmin:
	default:
		return respondError(c, &service.ValidationError{Field: "role", Message: "must be customer, host or admin"})
	}
	return run(c, http.StatusOK, func(ctx context.Context) (echo.Map, error) {
		return echo.Map{"id": c.Param("id"), "role": role}, h.Users.SetRole(ctx, c.Param("id"), role)
	})
}
