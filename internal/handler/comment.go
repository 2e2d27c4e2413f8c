package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
)

// CommentStore is implemented by *repository.CommentRepo.
type CommentStore interface {
	List(ctx context.Context) ([]model.Comment, error)
	Get(ctx context.Context, id string) (model.Comment, error)
	Create(ctx context.Context, c *model.Comment) error
	Update(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
}

// CommentHandler serves /api/v1/comments.  Comments are changed by their
// author or an admin.
type CommentHandler struct {
	Comments CommentStore
}

func NewCommentHandler(s CommentStore) *CommentHandler { return &CommentHandler{Comments: s} }

type commentReq struct {
	Comment string `json:"comment"`
}

func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Comments.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": items})
}

func (h *CommentHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	cm, err := h.Comments.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment is required", "field": "comment"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	cm := model.Comment{UserID: uid, Comment: strings.TrimSpace(req.Comment)}
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

// authorize loads the comment and checks the caller may change it.
func (h *CommentHandler) authorize(ctx context.Context, c echo.Context) (model.Comment, bool, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.Comment{}, false, err
	}
	cm, err := h.Comments.Get(ctx, c.Param("id"))
	if err != nil {
		return cm, false, err
	}
	return cm, cm.UserID == uid || isAdmin(c), nil
}

func (h *CommentHandler) Update(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment is required", "field": "comment"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	cm, ok, err := h.authorize(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your comment"})
	}
	cm.Comment = strings.TrimSpace(req.Comment)
	if err := h.Comments.Update(ctx, cm.ID, cm.Comment); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *CommentHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	cm, ok, err := h.authorize(ctx, c)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your comment"})
	}
	if err := h.Comments.Delete(ctx, cm.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
