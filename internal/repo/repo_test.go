package repo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(testutil.NewDB(t))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: true},
		{name: "pgx", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "pgx other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "lib/pq", err: &pq.Error{Code: "23505"}, want: true},
		{name: "mysql", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1452}, want: false},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"), want: true},
		{name: "not found", err: gorm.ErrRecordNotFound, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, repo.IsUniqueViolation(tt.err), tt.name)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.CreateUser(ctx, &models.User{Username: "alice", Email: "a@x.io", PasswordHash: "h"}))
	err := r.CreateUser(ctx, &models.User{Username: "alice", Email: "b@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	taken, err := r.UsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = r.GetUserByUsername(ctx, "nobody")
	assert.True(t, repo.IsNotFound(err))
}

func TestUpsertCartItem_Increments(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	item := &models.CartItem{UserID: 1, ProductID: 2, Quantity: 2}
	require.NoError(t, r.InTx(ctx, func(tx *repo.GormRepo) error { return tx.UpsertCartItem(ctx, item) }))
	item = &models.CartItem{UserID: 1, ProductID: 2, Quantity: 3}
	require.NoError(t, r.InTx(ctx, func(tx *repo.GormRepo) error { return tx.UpsertCartItem(ctx, item) }))

	assert.Equal(t, 5, item.Quantity)
	lines, err := r.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestDecrementCartItem(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.UpsertCartItem(ctx, &models.CartItem{UserID: 1, ProductID: 1, Quantity: 2}))

	deleted, item, err := r.DecrementCartItem(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, item.Quantity)

	deleted, _, err = r.DecrementCartItem(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, _, err = r.DecrementCartItem(ctx, 1, 1)
	assert.True(t, repo.IsNotFound(err))
}

func TestInTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := r.InTx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateCategory(ctx, &models.Category{Name: "Books"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	taken, err := r.CategoryNameTaken(ctx, "Books")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestDecrementStock_Guarded(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	p := &models.Product{Name: "Widget", Price: 1, Stock: 3}
	require.NoError(t, r.CreateProduct(ctx, p))

	ok, err := r.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

func TestCategoryLinks(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	a := &models.Category{Name: "A"}
	b := &models.Category{Name: "B"}
	require.NoError(t, r.CreateCategory(ctx, a))
	require.NoError(t, r.CreateCategory(ctx, b))
	p := &models.Product{Name: "Widget", Price: 1}
	require.NoError(t, r.CreateProduct(ctx, p))

	existing, err := r.ExistingCategoryIDs(ctx, []uint{b.ID, 999, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, existing)

	require.NoError(t, r.AddProductCategories(ctx, p.ID, []uint{b.ID, a.ID}))
	require.NoError(t, r.AddProductCategories(ctx, p.ID, []uint{a.ID}))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID}, got.CategoryIDs)

	list, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []uint{a.ID, b.ID}, list[0].CategoryIDs)
}

func TestListProducts_OrderedByID(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.CreateProduct(ctx, &models.Product{Name: name, Price: 1}))
	}

	list, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "a", list[1].Name)
	assert.Equal(t, "b", list[2].Name)
	assert.Empty(t, list[0].CategoryIDs)

	total, page, err := r.ListProductsPage(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].Name)
}

func TestSearchProducts_Like(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.CreateProduct(ctx, &models.Product{Name: "Red Widget", Price: 1}))
	require.NoError(t, r.CreateProduct(ctx, &models.Product{Name: "Gadget", Description: "pairs with a widget", Price: 1}))
	require.NoError(t, r.CreateProduct(ctx, &models.Product{Name: "Lamp", Price: 1}))

	total, items, err := r.SearchProducts(ctx, "WIDGET", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Red Widget", items[0].Name)
}

func TestCommentSubtreeIDs(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()

	root := &models.Comment{UserID: 1, ProductID: 1, Text: "root"}
	require.NoError(t, r.CreateComment(ctx, root))
	child := &models.Comment{UserID: 1, ProductID: 1, ParentID: &root.ID, Text: "child"}
	require.NoError(t, r.CreateComment(ctx, child))
	grandchild := &models.Comment{UserID: 1, ProductID: 1, ParentID: &child.ID, Text: "grandchild"}
	require.NoError(t, r.CreateComment(ctx, grandchild))
	other := &models.Comment{UserID: 1, ProductID: 1, Text: "other"}
	require.NoError(t, r.CreateComment(ctx, other))

	ids, err := r.CommentSubtreeIDs(ctx, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{root.ID, child.ID, grandchild.ID}, ids)

	n, err := r.DeleteComments(ctx, ids)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	left, err := r.ListComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].ID)
}
