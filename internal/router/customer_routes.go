package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterCustomer registers endpoints open to any signed-in user.  The
// group already carries JWTAuth.
func RegisterCustomer(g *echo.Group, h Handlers) {
	if u := h.Users; u != nil {
		g.GET("/users/me", u.Me)
		g.PUT("/users/me", u.UpdateMe)
	}

	if b := h.Bookings; b != nil {
		g.POST("/bookings", b.Create)
		g.GET("/bookings/mine", b.Mine)
		g.GET("/bookings/:id", b.Get)
		g.PATCH("/bookings/:id/status", b.UpdateStatus)
		g.DELETE("/bookings/:id", b.Delete)
	}

	if r := h.Ratings; r != nil {
		g.POST("/ratings", r.Create)
		g.DELETE("/ratings/:id", r.Delete)
	}

	if f := h.Favorites; f != nil {
		g.GET("/favorites", f.Mine)
		g.POST("/favorites", f.Add)
		g.DELETE("/favorites/:productId", f.Remove)
	}

	if a := h.PaymentAccounts; a != nil {
		g.GET("/payment-accounts", a.Mine)
		g.POST("/payment-accounts", a.Create)
		g.PUT("/payment-accounts/:id", a.Update)
		g.DELETE("/payment-accounts/:id", a.Delete)
	}

	if cm := h.Comments; cm != nil {
		g.POST("/comments", cm.Create)
		g.PUT("/comments/:id", cm.Update)
		g.DELETE("/comments/:id", cm.Delete)
	}

	if b := h.Blog; b != nil {
		g.POST("/blog/posts/:id/likes", b.Like)
		g.DELETE("/blog/posts/:id/likes", b.Unlike)
	}

	if p := h.Payments; p != nil {
		g.POST("/payments/3ds", p.ThreeDS)
		g.POST("/payments/blink/checkout", p.Checkout)
	}
}
