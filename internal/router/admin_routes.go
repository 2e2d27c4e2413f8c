package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterAdmin registers the back-office endpoints.
func RegisterAdmin(g *echo.Group, h Handlers) {
	if t := h.Taxonomy; t != nil {
		g.POST("/product-types", t.CreateType)
		g.PUT("/product-types/:id", t.UpdateType)
		g.DELETE("/product-types/:id", t.DeleteType)

		g.POST("/product-category", t.CreateCategory)
		g.PUT("/product-category/:id", t.UpdateCategory)
		g.DELETE("/product-category/:id", t.DeleteCategory)

		g.POST("/product-audience", t.CreateAudience)
		g.PUT("/product-audience/:id", t.UpdateAudience)
		g.DELETE("/product-audience/:id", t.DeleteAudience)

		g.POST("/product-amenities", t.CreateAmenity)
		g.PUT("/product-amenities/:id", t.UpdateAmenity)
		g.DELETE("/product-amenities/:id", t.DeleteAmenity)
	}

	if r := h.Roles; r != nil {
		g.GET("/roles", r.List)
		g.GET("/roles/:id", r.Get)
		g.POST("/roles", r.Create)
		g.PUT("/roles/:id", r.Update)
		g.DELETE("/roles/:id", r.Delete)
	}

	if u := h.Users; u != nil {
		g.GET("/users", u.List)
		g.PATCH("/users/:id/role", u.SetRole)
	}

	if p := h.Products; p != nil {
		g.PATCH("/products/:id/approval", p.Approve)
	}

	if r := h.Ratings; r != nil {
		g.PATCH("/ratings/:id/status", r.Moderate)
	}

	if b := h.Blog; b != nil {
		g.POST("/blog/categories", b.CreateCategory)
		g.PUT("/blog/categories/:id", b.UpdateCategory)
		g.DELETE("/blog/categories/:id", b.DeleteCategory)
		g.GET("/blog/admin/posts", b.ListAllPosts)
		g.PATCH("/blog/posts/:id/approval", b.ApprovePost)
	}

	if p := h.Payments; p != nil {
		g.GET("/payments/blink/wallets", p.Wallets)
		g.POST("/payments/blink/payout", p.Payout)
	}
}
