package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/model"
	"github.com/iliyamo/dantour/internal/service"
)

// maxBookingBody caps a booking request body.
const maxBookingBody = 64 << 10

// Bookings is implemented by *service.BookingService.
type Bookings interface {
	CreateBooking(ctx context.Context, in service.CreateBookingInput) (model.Booking, error)
	UpdateStatus(ctx context.Context, id, callerID, status string) (model.Booking, error)
	DeleteBooking(ctx context.Context, id, callerID string) error
	GetBooking(ctx context.Context, id, callerID string) (*model.BookingDetail, error)
	ListForUser(ctx context.Context, callerID string) ([]model.BookingDetail, error)
	ListForProduct(ctx context.Context, productID, callerID string) ([]model.BookingDetail, error)
}

// BookingHandler serves /api/v1/bookings.
type BookingHandler struct {
	Bookings Bookings
}

func NewBookingHandler(b Bookings) *BookingHandler {
	if b == nil {
		panic("nil bookings passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: b}
}

// Create: POST /bookings.  The body accepts the aliases mobile and web
// clients send (idTransaccion, paymentMethod, tour_date_id as an array).
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBookingBody))
	if err != nil {
		return badRequest(c, "invalid body")
	}
	in, err := service.ParseBookingRequest(raw, uid)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	b, err := h.Bookings.CreateBooking(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus: PATCH /bookings/:id/status.  The guest may cancel; the
// product owner may complete or cancel.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required", "field": "status"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	b, err := h.Bookings.UpdateStatus(ctx, c.Param("id"), uid, strings.TrimSpace(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete: DELETE /bookings/:id by the guest.
func (h *BookingHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Bookings.DeleteBooking(ctx, c.Param("id"), uid); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get: GET /bookings/:id for the guest or the product owner.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, c.Param("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Mine: GET /bookings/mine.
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Bookings.ListForUser(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// ByProduct: GET /bookings/product/:id for the product owner.
func (h *BookingHandler) ByProduct(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	items, err := h.Bookings.ListForProduct(ctx, c.Param("id"), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}
