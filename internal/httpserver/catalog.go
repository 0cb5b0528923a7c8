package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pathID(c echo.Context, name string) (uint, error) {
	id, ok := util.ParseUint(c.Param(name))
	if !ok {
		return 0, badRequest(c, "invalid_path", "invalid "+name, nil)
	}
	return id, nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "create_product_error", "invalid body", err)
	}

	p, err := h.Svc.CreateProduct(ctx, service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return respondError(c, "create_product_failed", err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return respondError(c, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListProducts returns the whole catalog unless page or size is given.
func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("page") == "" && c.QueryParam("size") == "" {
		items, err := h.Svc.ListProducts(ctx)
		if err != nil {
			return respondError(c, "list_products_failed", err)
		}
		return c.JSON(http.StatusOK, items)
	}

	page, offset, limit := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	total, items, err := h.Svc.ListProductsPage(ctx, offset, limit)
	if err != nil {
		return respondError(c, "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ProductPage{Items: items, Meta: util.Meta(page, offset, limit, total)})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	page, offset, limit := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)

	total, items, err := h.Svc.SearchProducts(c.Request().Context(), c.QueryParam("q"), offset, limit)
	if err != nil {
		return respondError(c, "search_products_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ProductPage{Items: items, Meta: util.Meta(page, offset, limit, total)})
}

func (h *CatalogHTTP) AddCategories(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.AddCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "add_categories_error", "invalid body", err)
	}

	p, err := h.Svc.AddCategoriesToProduct(c.Request().Context(), id, req.CategoryIDs)
	if err != nil {
		return respondError(c, "add_categories_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "create_category_error", "invalid body", err)
	}

	cat, err := h.Svc.CreateCategory(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return respondError(c, "create_category_failed", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	items, err := h.Svc.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}
