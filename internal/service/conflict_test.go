package service_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

// insertBefore makes the next create of a *T write rival(dest) first, through
// the same transaction, so the real insert hits the unique index after every
// read-side check has passed.
func insertBefore[T any](t *testing.T, db *gorm.DB, rival func(dest *T) any) {
	t.Helper()

	var fired atomic.Bool
	err := db.Callback().Create().Before("gorm:create").Register("storefront:insert_before", func(tx *gorm.DB) {
		dest, ok := tx.Statement.Dest.(*T)
		if !ok || !fired.CompareAndSwap(false, true) {
			return
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(rival(dest)).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func TestCreateCategory_ConflictAtCommit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	insertBefore(t, e.Repo.DB, func(c *models.Category) any {
		return &models.Category{Name: c.Name}
	})

	_, err := e.Catalog.CreateCategory(ctx, "Books", "")
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Contains(t, err.Error(), `"Books"`)
	assert.Empty(t, e.Events.Types(service.TopicProduct))

	cats, err := e.Catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestAddToCart_ConflictAtCommit(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := e.register(t, "alice", "pw")
	p := e.product(t, "Widget", 1, 5)

	insertBefore(t, e.Repo.DB, func(item *models.CartItem) any {
		return &models.CartItem{UserID: item.UserID, ProductID: item.ProductID, Quantity: 1}
	})

	_, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 2)
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Empty(t, e.Events.Types(service.TopicCart))

	cart, err := e.Cart.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	line, err := e.Cart.AddToCart(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}
