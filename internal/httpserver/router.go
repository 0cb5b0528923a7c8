package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ReadyCheck is one dependency that must answer before the service takes traffic.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Deps struct {
	Auth     *AuthHTTP
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Comments *CommentHTTP

	Ready   []ReadyCheck
	Metrics http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx := c.Request().Context()
		for _, rc := range d.Ready {
			if err := rc.Check(ctx); err != nil {
				logging.FromContext(ctx).Warn("not_ready", "status", http.StatusServiceUnavailable, "dependency", rc.Name, "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, rc.Name+" not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	api := e.Group("/api/v1")
	requireUser := authmw.RequireUser(d.Auth.Svc)

	api.POST("/users", d.Auth.Register)
	api.POST("/token", d.Auth.Login)
	api.POST("/refresh", d.Auth.Refresh)
	api.GET("/users/:username", d.Auth.GetUser)

	api.GET("/products", d.Catalog.ListProducts)
	api.GET("/products/search", d.Catalog.SearchProducts)
	api.GET("/products/:id", d.Catalog.GetProduct)
	api.GET("/categories", d.Catalog.ListCategories)
	api.GET("/products/:id/comments", d.Comments.Tree)

	api.GET("/me", d.Auth.Me, requireUser)

	api.POST("/products", d.Catalog.CreateProduct, requireUser)
	api.POST("/products/:id/categories", d.Catalog.AddCategories, requireUser)
	api.POST("/categories", d.Catalog.CreateCategory, requireUser)

	api.GET("/cart", d.Cart.Get, requireUser)
	api.POST("/cart", d.Cart.Add, requireUser)
	api.DELETE("/cart/:product_id", d.Cart.Remove, requireUser)
	api.POST("/cart/checkout", d.Cart.Checkout, requireUser)
	api.GET("/purchases", d.Cart.Purchases, requireUser)

	api.POST("/products/:id/comments", d.Comments.Create, requireUser)
	api.DELETE("/comments/:id", d.Comments.Delete, requireUser)
}
