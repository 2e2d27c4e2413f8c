package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dantour/internal/service"
)

// Panel is implemented by *service.PanelService.
type Panel interface {
	ActiveReservations(ctx context.Context, hostID string) (service.ActiveReservations, error)
	Revenue(ctx context.Context, hostID string) (service.Revenue, error)
	FrequentTravelers(ctx context.Context, hostID string) (service.FrequentTravelers, error)
	Activity(ctx context.Context, hostID string) ([]service.MonthActivity, error)
	Upcoming(ctx context.Context, hostID string, limit int) (service.UpcomingReservations, error)
	Summary(ctx context.Context, hostID string) (service.PanelSummary, error)
}

// PanelHandler serves the host dashboard under /api/v1/panel.  Each
// route answers GET and POST.
type PanelHandler struct {
	Panel Panel
}

func NewPanelHandler(p Panel) *PanelHandler {
	if p == nil {
		panic("nil panel passed to NewPanelHandler")
	}
	return &PanelHandler{Panel: p}
}

// hostID is the caller; an admin may look at another host through
// ?userId.
func hostID(c echo.Context) (string, error) {
	uid, err := getUserID(c)
	if err != nil {
		return "", err
	}
	if other := strings.TrimSpace(c.QueryParam("userId")); other != "" && isAdmin(c) {
		return other, nil
	}
	return uid, nil
}

// panelRoute adapts one aggregate to an echo handler.
func panelRoute[T any](fetch func(ctx context.Context, host string) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		host, err := hostID(c)
		if err != nil {
			return unauthorized(c)
		}
		ctx, cancel := requestCtx(c)
		defer cancel()

		out, err := fetch(ctx, host)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *PanelHandler) Summary() echo.HandlerFunc { return panelRoute(h.Panel.Summary) }

func (h *PanelHandler) ActiveReservations() echo.HandlerFunc {
	return panelRoute(h.Panel.ActiveReservations)
}

func (h *PanelHandler) Revenue() echo.HandlerFunc { return panelRoute(h.Panel.Revenue) }

func (h *PanelHandler) FrequentTravelers() echo.HandlerFunc {
	return panelRoute(h.Panel.FrequentTravelers)
}

func (h *PanelHandler) Activity() echo.HandlerFunc { return panelRoute(h.Panel.Activity) }

// Upcoming takes ?limit (default 10, at most 50).
func (h *PanelHandler) Upcoming(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return respondError(c, err)
	}
	return panelRoute(func(ctx context.Context, host string) (service.UpcomingReservations, error) {
		return h.Panel.Upcoming(ctx, host, limit)
	})(c)
}
