package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func mustUser(c echo.Context) (*models.User, error) {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return user, nil
}

func (h *CartHTTP) Add(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "add_to_cart_error", "invalid body", err)
	}

	item, err := h.Svc.AddToCart(ctx, user.ID, req.ProductID, req.Units())
	if err != nil {
		return respondError(c, "add_to_cart_failed", err)
	}

	logging.FromContext(ctx).Info("cart_item_added", "product_id", req.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) Get(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.GetCart(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, "get_cart_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "product_id")
	if err != nil {
		return err
	}

	item, err := h.Svc.RemoveFromCart(c.Request().Context(), user.ID, productID)
	if err != nil {
		return respondError(c, "remove_from_cart_failed", err)
	}
	return c.JSON(http.StatusOK, transport.RemoveFromCartResponse{Deleted: item == nil, Item: item})
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	res, err := h.Svc.Checkout(ctx, user.ID)
	if err != nil {
		return respondError(c, "checkout_failed", err)
	}

	logging.FromContext(ctx).Info("checkout_successful", "purchases", len(res.Purchases), "total", res.Total)
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) Purchases(c echo.Context) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.ListPurchases(c.Request().Context(), user.ID)
	if err != nil {
		return respondError(c, "list_purchases_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}
