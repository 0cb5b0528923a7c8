package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Search ProductSearcher
	Cache  ProductCache
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryIDs []uint
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func productKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product", "name", in.Name)

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case !(in.Price > 0) || math.IsInf(in.Price, 1):
		return nil, fmt.Errorf("%w: price must be a positive number", ErrValidation)
	case in.Stock < 0:
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if err := errors.Join(
		tooLong("name", name, models.MaxNameLen),
		tooLong("description", in.Description, models.MaxProductDescriptionLen),
	); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
	}

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		existing, err := tx.ExistingCategoryIDs(ctx, uniqueIDs(in.CategoryIDs))
		if err != nil {
			return err
		}
		if err := tx.AddProductCategories(ctx, product.ID, existing); err != nil {
			return err
		}
		product.CategoryIDs = existing
		return nil
	})
	if err != nil {
		if repo.IsUniqueViolation(err) {
			l.Warn("create_product_conflict", "error", err)
			return nil, fmt.Errorf("%w: product %q already exists", ErrConflict, name)
		}
		l.Error("create_product_error", "reason", "cannot save product", "error", err)
		return nil, internalErr(err)
	}

	s.afterProductWrite(ctx, *product)
	publish(ctx, s.Events, TopicProduct, productKey(product.ID), map[string]any{
		"type":        "product_created",
		"productID":   product.ID,
		"name":        product.Name,
		"price":       product.Price,
		"stock":       product.Stock,
		"categoryIDs": product.CategoryIDs,
	})
	return product, nil
}

// CreateCategory checks the name first to give a clean error; the unique index
// remains the authority when two creates race.
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_category", "name", name)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := errors.Join(
		tooLong("name", name, models.MaxNameLen),
		tooLong("description", description, models.MaxCategoryDescriptionLen),
	); err != nil {
		return nil, err
	}

	category := &models.Category{Name: name, Description: description}
	errTaken := fmt.Errorf("%w: category %q already exists", ErrConflict, name)

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		taken, err := tx.CategoryNameTaken(ctx, name)
		if err != nil {
			return err
		}
		if taken {
			return errTaken
		}
		return tx.CreateCategory(ctx, category)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict), repo.IsUniqueViolation(err):
		l.Warn("create_category_conflict", "error", err)
		return nil, errTaken
	default:
		l.Error("create_category_error", "reason", "cannot save category", "error", err)
		return nil, internalErr(err)
	}

	publish(ctx, s.Events, TopicProduct, "category-"+productKey(category.ID), map[string]any{
		"type":       "category_created",
		"categoryID": category.ID,
		"name":       category.Name,
	})
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	items, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	return items, nil
}

// AddCategoriesToProduct is idempotent: ids already linked and ids that name no
// category are skipped, and nothing is written when no new link remains.
func (s *CatalogService) AddCategoriesToProduct(ctx context.Context, productID uint, categoryIDs []uint) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.add_categories", "product_id", productID)

	var (
		product *models.Product
		added   []uint
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		fresh := make([]uint, 0, len(categoryIDs))
		for _, id := range uniqueIDs(categoryIDs) {
			if !slices.Contains(p.CategoryIDs, id) {
				fresh = append(fresh, id)
			}
		}
		existing, err := tx.ExistingCategoryIDs(ctx, fresh)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			if err := tx.AddProductCategories(ctx, p.ID, existing); err != nil {
				return err
			}
			p.CategoryIDs = append(p.CategoryIDs, existing...)
			slices.Sort(p.CategoryIDs)
		}
		product, added = p, existing
		return nil
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		l.Error("add_categories_error", "reason", "cannot link categories", "error", err)
		return nil, internalErr(err)
	}

	if len(added) > 0 {
		s.afterProductWrite(ctx, *product)
		publish(ctx, s.Events, TopicProduct, productKey(product.ID), map[string]any{
			"type":        "product_categories_added",
			"productID":   product.ID,
			"categoryIDs": added,
		})
	}
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, internalErr(err)
	}
	return p, nil
}

// ListProducts returns every product ordered by id, served from the cache when
// one is configured.
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if s.Cache != nil {
		if items, ok := s.Cache.GetProducts(ctx); ok {
			return items, nil
		}
	}

	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_products_error", "svc", "catalog.list_products", "error", err)
		return nil, internalErr(err)
	}

	if s.Cache != nil {
		s.Cache.SetProducts(ctx, items)
	}
	return items, nil
}

func (s *CatalogService) ListProductsPage(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	total, items, err := s.Repo.ListProductsPage(ctx, offset, limit)
	if err != nil {
		return 0, nil, internalErr(err)
	}
	return total, items, nil
}

// SearchProducts queries the search index and falls back to the database when
// the index is not configured or fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query is required", ErrValidation)
	}

	if s.Search != nil {
		total, items, err := s.Search.SearchProducts(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "svc", "catalog.search", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, internalErr(err)
	}
	return total, items, nil
}

func (s *CatalogService) afterProductWrite(ctx context.Context, p models.Product) {
	if s.Cache != nil {
		s.Cache.InvalidateProducts(ctx)
	}
	if s.Search != nil {
		if err := s.Search.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
		}
	}
}
