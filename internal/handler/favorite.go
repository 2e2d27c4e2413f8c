package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
)

// FavoriteStore is implemented by *repository.FavoriteRepo.
type FavoriteStore interface {
	Add(ctx context.Context, userID, productID string) (model.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]model.FavoriteProduct, error)
	Remove(ctx context.Context, userID, productID string) error
}

// FavoriteHandler serves the caller's favorites.
type FavoriteHandler struct {
	Favorites FavoriteStore
}

func NewFavoriteHandler(s FavoriteStore) *FavoriteHandler { return &FavoriteHandler{Favorites: s} }

type favoriteReq struct {
	ProductID string `json:"product_id"`
}

// Mine: GET /favorites.
func (h *FavoriteHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Favorites.ListByUser(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"favorites": items})
}

// Add: POST /favorites.  Adding twice answers with the existing row.
func (h *FavoriteHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req favoriteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ProductID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required", "field": "product_id"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	f, err := h.Favorites.Add(ctx, uid, strings.TrimSpace(req.ProductID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// Remove: DELETE /favorites/:productId.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Favorites.Remove(ctx, uid, c.Param("productId")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
