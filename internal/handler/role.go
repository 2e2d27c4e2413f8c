package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
)

// RoleStore is implemented by *repository.RoleRepo.
type RoleStore interface {
	List(ctx context.Context) ([]model.Role, error)
	GetByID(ctx context.Context, id string) (model.Role, error)
	Create(ctx context.Context, ro *model.Role) error
	Update(ctx context.Context, ro model.Role) error
	Delete(ctx context.Context, id string) error
}

// RoleHandler serves /api/v1/roles (admin).
type RoleHandler struct {
	Roles RoleStore
}

func NewRoleHandler(s RoleStore) *RoleHandler { return &RoleHandler{Roles: s} }

type roleReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func bindRole(c echo.Context) (model.Role, error) {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return model.Role{}, &service.ValidationError{Message: "invalid body"}
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		return model.Role{}, &service.ValidationError{Field: "name", Message: "is required"}
	}
	perms := model.StringList{}
	for _, p := range req.Permissions {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	return model.Role{Name: name, Description: strings.TrimSpace(req.Description), Permissions: perms}, nil
}

func (h *RoleHandler) List(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) ([]model.Role, error) {
		return h.Roles.List(ctx)
	})
}

func (h *RoleHandler) Get(c echo.Context) error {
	return run(c, http.StatusOK, func(ctx context.Context) (model.Role, error) {
		return h.Roles.GetByID(ctx, c.Param("id"))
	})
}

func (h *RoleHandler) Create(c echo.Context) error {
	ro, err := bindRole(c)
	if err != nil {
		return respondError(c, err)
	}
	return run(c, http.StatusCreated, func(ctx context.Context) (model.Role, error) {
		err := h.Roles.Create(ctx, &ro)
		return ro, err
	})
}

func (h *RoleHandler) Update(c echo.Context) error {
	ro, err := bindRole(c)
	if err != nil {
		return respondError(c, err)
	}
	ro.ID = c.Param("id")
	return run(c, http.StatusOK, func(ctx context.Context) (model.Role, error) {
		return ro, h.Roles.Update(ctx, ro)
	})
}

// Delete answers 409 while users still hold the role.
func (h *RoleHandler) Delete(c echo.Context) error {
	return run(c, http.StatusNoContent, func(ctx context.Context) (none, error) {
		return discard(h.Roles.Delete(ctx, c.Param("id")))
	})
}
