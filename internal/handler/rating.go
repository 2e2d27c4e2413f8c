package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
)

// Ratings is implemented by *service.RatingService.
type Ratings interface {
	ListByProduct(ctx context.Context, productID string) ([]model.RatingWithUser, error)
	Create(ctx context.Context, in service.CreateRatingInput) (model.Rating, error)
	Delete(ctx context.Context, id, callerID string, isAdmin bool) error
	Moderate(ctx context.Context, id, status string) error
}

type RatingHandler struct {
	Ratings Ratings
}

func NewRatingHandler(r Ratings) *RatingHandler { return &RatingHandler{Ratings: r} }

// ByProduct: GET /ratings/product/:id.
func (h *RatingHandler) ByProduct(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Ratings.ListByProduct(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ratings": items})
}

type ratingReq struct {
	ProductID string  `json:"product_id"`
	Rating    int     `json:"rating"`
	Review    *string `json:"review"`
}

// Create: POST /ratings.
func (h *RatingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	r, err := h.Ratings.Create(ctx, service.CreateRatingInput{
		UserID:    uid,
		ProductID: strings.TrimSpace(req.ProductID),
		Rating:    req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// Delete: DELETE /ratings/:id by its author or an admin.
func (h *RatingHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Ratings.Delete(ctx, c.Param("id"), uid, isAdmin(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Moderate: PATCH /ratings/:id/status (admin).
func (h *RatingHandler) Moderate(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if err := h.Ratings.Moderate(ctx, c.Param("id"), status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "status": status})
}
