package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterPublic registers the unauthenticated read endpoints.  cache is
// applied to every route here; it skips requests that carry a token.
func RegisterPublic(api *echo.Group, h Handlers, cache echo.MiddlewareFunc) {
	if p := h.Products; p != nil {
		api.GET("/products", p.List, cache)
		api.GET("/products/:id", p.Get, cache)
		api.GET("/products/user/:id", p.ListByOwner, cache)
	}
	if r := h.Ratings; r != nil {
		api.GET("/ratings/product/:id", r.ByProduct, cache)
	}
	if f := h.FAQs; f != nil {
		api.GET("/faqs", f.List, cache)
		api.GET("/faqs/:id", f.Get, cache)
		api.GET("/faqs/product/:id", f.ByProduct, cache)
	}
	if cm := h.Comments; cm != nil {
		api.GET("/comments", cm.List, cache)
		api.GET("/comments/:id", cm.Get, cache)
	}
	if t := h.Taxonomy; t != nil {
		api.GET("/product-types", t.ListTypes, cache)
		api.GET("/product-types/:id", t.GetType, cache)
		api.GET("/product-category", t.ListCategories, cache)
		api.GET("/product-category/:id", t.GetCategory, cache)
		api.GET("/product-audience", t.ListAudiences, cache)
		api.GET("/product-amenities", t.ListAmenities, cache)
		api.GET("/product-amenities/:id", t.GetAmenity, cache)
	}
	if b := h.Blog; b != nil {
		api.GET("/blog/categories", b.ListCategories, cache)
		api.GET("/blog/posts", b.ListPosts, cache)
		api.GET("/blog/posts/:id", b.GetPost, cache) // id or slug
	}
}
