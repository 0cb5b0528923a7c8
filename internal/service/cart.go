package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartService struct {
	Repo    *repo.GormRepo
	Events  EventPublisher
	Cache   ProductCache
	Search  ProductIndexer
	Metrics Recorder
	Now     func() time.Time
}

type CheckoutResult struct {
	Purchases []models.Purchase `json:"purchases"`
	Total     float64           `json:"total"`
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *CartService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// AddToCart adds quantity units of a product, incrementing the existing line
// for the (user, product) pair instead of creating a second one.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)

	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}
		ok, err := tx.ProductExists(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return tx.UpsertCartItem(ctx, item)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		l.Warn("add_to_cart_rejected", "error", err)
		return nil, err
	case repo.IsUniqueViolation(err):
		l.Warn("add_to_cart_conflict", "error", err)
		return nil, fmt.Errorf("%w: cart line could not be saved", ErrConflict)
	default:
		l.Error("add_to_cart_error", "reason", "cannot save cart line", "error", err)
		return nil, internalErr(err)
	}

	recorder(s.Metrics).CartItemAdded(quantity)
	publish(ctx, s.Events, TopicCart, userKey(userID), map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  quantity,
		"total":     item.Quantity,
	})
	return item, nil
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, internalErr(err)
	}
	return items, nil
}

// RemoveFromCart takes one unit off a line. The returned item is nil when the
// line was removed entirely.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var (
		deleted bool
		item    *models.CartItem
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		deleted, item, err = tx.DecrementCartItem(ctx, userID, productID)
		return err
	})
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, productID)
		}
		logging.FromContext(ctx).Error("remove_from_cart_error", "svc", "cart.remove", "error", err)
		return nil, internalErr(err)
	}

	publish(ctx, s.Events, TopicCart, userKey(userID), map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
		"deleted":   deleted,
	})
	if deleted {
		return nil, nil
	}
	return item, nil
}

// Checkout turns every cart line into a purchase, lowering stock and emptying
// the cart in one transaction.
func (s *CartService) Checkout(ctx context.Context, userID uint) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout", "user_id", userID)

	result := &CheckoutResult{}
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		lines, err := tx.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		at := s.now()
		purchases := make([]models.Purchase, 0, len(lines))
		for _, line := range lines {
			p, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				if repo.IsNotFound(err) {
					return fmt.Errorf("%w: product %d", ErrNotFound, line.ProductID)
				}
				return err
			}
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: not enough stock for %q", ErrValidation, p.Name)
			}
			purchases = append(purchases, models.Purchase{
				UserID:      userID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
				PurchasedAt: at,
			})
			result.Total += p.Price * float64(line.Quantity)
		}

		if err := tx.CreatePurchases(ctx, purchases); err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}
		result.Purchases = purchases
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
			l.Warn("checkout_rejected", "error", err)
			return nil, err
		}
		l.Error("checkout_error", "reason", "cannot complete checkout", "error", err)
		return nil, internalErr(err)
	}

	if s.Cache != nil {
		s.Cache.InvalidateProducts(ctx)
	}
	s.reindex(ctx, result.Purchases)
	recorder(s.Metrics).CheckoutCompleted(len(result.Purchases), result.Total)
	publish(ctx, s.Events, TopicCart, userKey(userID), map[string]any{
		"type":   "cart_checked_out",
		"userID": userID,
		"lines":  len(result.Purchases),
		"total":  result.Total,
	})
	l.Info("checkout_success", "lines", len(result.Purchases))
	return result, nil
}

func (s *CartService) ListPurchases(ctx context.Context, userID uint) ([]models.Purchase, error) {
	items, err := s.Repo.ListPurchases(ctx, userID)
	if err != nil {
		return nil, internalErr(err)
	}
	return items, nil
}

// reindex pushes the new stock of every purchased product to the search index.
func (s *CartService) reindex(ctx context.Context, purchases []models.Purchase) {
	if s.Search == nil {
		return
	}
	l := logging.FromContext(ctx).With("svc", "cart.reindex")
	for _, pu := range purchases {
		p, err := s.Repo.GetProduct(ctx, pu.ProductID)
		if err != nil {
			l.Warn("reindex_failed", "product_id", pu.ProductID, "error", err)
			continue
		}
		if err := s.Search.IndexProduct(ctx, *p); err != nil {
			l.Warn("reindex_failed", "product_id", pu.ProductID, "error", err)
		}
	}
}
