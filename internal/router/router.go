package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/dantour/internal/handler"
	"github.com/iliyamo/dantour/internal/middleware"
	"github.com/iliyamo/dantour/internal/model"
)

// apiPrefix is the root of every versioned route.
const apiPrefix = "/api/v1"

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth            *handler.AuthHandler
	Products        *handler.ProductHandler
	Bookings        *handler.BookingHandler
	Panel           *handler.PanelHandler
	Ratings         *handler.RatingHandler
	Payments        *handler.PaymentHandler
	PaymentAccounts *handler.PaymentAccountHandler
	Comments        *handler.CommentHandler
	FAQs            *handler.FAQHandler
	Favorites       *handler.FavoriteHandler
	Taxonomy        *handler.TaxonomyHandler
	Roles           *handler.RoleHandler
	Users           *handler.UserHandler
	Blog            *handler.BlogHandler
}

// Options carries the infrastructure pieces the router needs besides the
// handlers.  Cache and RateLimit may be nil.
type Options struct {
	JWTSecret string
	DB        handler.Pinger
	Gatherer  prometheus.Gatherer
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// New builds the Echo instance with global middleware and every route.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.Tracing())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())

	RegisterRoutes(e, opt)
	if h.Payments != nil {
		e.POST("/webhook-wompi", h.Payments.Webhook)
	}

	api := e.Group(apiPrefix, orPass(opt.RateLimit))
	RegisterAuth(api, h.Auth, opt.JWTSecret)
	RegisterPublic(api, h, orPass(opt.Cache))

	auth := api.Group("", middleware.JWTAuth(opt.JWTSecret))
	RegisterCustomer(auth, h)

	host := auth.Group("", middleware.RequireRole(model.RoleHost, model.RoleAdmin))
	RegisterHost(host, h)

	admin := auth.Group("", middleware.RequireRole(model.RoleAdmin))
	RegisterAdmin(admin, h)

	// Each group with middleware registers its own catch-all under the
	// prefix and the last one wins; unknown API paths must stay 404.
	e.RouteNotFound(apiPrefix, apiNotFound)
	e.RouteNotFound(apiPrefix+"/*", apiNotFound)
	return e
}

func apiNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
}

// RegisterRoutes registers the unversioned operational endpoints: liveness,
// readiness and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, opt Options) {
	e.GET("/healthz", handler.Health)
	if opt.DB != nil {
		e.GET("/readyz", handler.Ready(opt.DB))
	}
	g := opt.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
}

// RegisterAuth registers the session endpoints.  None of them require an
// access token; logout accepts either a refresh token or a bearer token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	if a == nil {
		return
	}
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	api.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}
