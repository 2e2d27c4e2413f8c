package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RegisterHost registers host endpoints.  Admins pass the role check as
// well; ownership is enforced by the services.
func RegisterHost(g *echo.Group, h Handlers) {
	if p := h.Products; p != nil {
		g.POST("/products", p.Create, echomw.BodyLimit(p.BodyLimit()))
		g.PUT("/products/:id", p.Update)
		g.PATCH("/products/:id", p.Update)
		g.DELETE("/products/:id", p.Delete)
		g.GET("/products/usersimplified/:id", p.ListSimplified)
	}

	if b := h.Bookings; b != nil {
		g.GET("/bookings/product/:id", b.ByProduct)
	}

	// ---- Panel ----
	// Every aggregate answers GET and POST; older dashboards post.
	if pn := h.Panel; pn != nil {
		panel := g.Group("/panel")
		for path, fn := range map[string]echo.HandlerFunc{
			"/summary":             pn.Summary(),
			"/active-reservations": pn.ActiveReservations(),
			"/revenue":             pn.Revenue(),
			"/frequent-travelers":  pn.FrequentTravelers(),
			"/activity":            pn.Activity(),
			"/upcoming":            pn.Upcoming,
		} {
			panel.GET(path, fn)
			panel.POST(path, fn)
		}
	}

	if f := h.FAQs; f != nil {
		g.POST("/faqs", f.Create)
		g.PUT("/faqs/:id", f.Update)
		g.DELETE("/faqs/:id", f.Delete)
	}

	if b := h.Blog; b != nil {
		g.POST("/blog/posts", b.CreatePost)
		g.PATCH("/blog/posts/:id", b.UpdatePost)
		g.DELETE("/blog/posts/:id", b.DeletePost)
	}
}
