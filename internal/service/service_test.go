package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	Repo     *repo.GormRepo
	Tokens   *tokens.Service
	Clock    *clock
	Events   *testutil.Publisher
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Comments *service.CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	r := repo.New(testutil.NewDB(t))
	clk := &clock{t: time.Now().UTC().Truncate(time.Second)}
	tok, err := tokens.New(tokens.Config{
		Secret:     []byte("test-secret"),
		Algorithm:  "HS256",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        clk.Now,
	})
	require.NoError(t, err)

	events := &testutil.Publisher{}
	return &env{
		Repo:     r,
		Tokens:   tok,
		Clock:    clk,
		Events:   events,
		Auth:     &service.AuthService{Repo: r, Hasher: hash.New(bcrypt.MinCost), Tokens: tok, Events: events},
		Catalog:  &service.CatalogService{Repo: r, Events: events},
		Cart:     &service.CartService{Repo: r, Events: events, Now: clk.Now},
		Comments: &service.CommentService{Repo: r, Events: events},
	}
}

func (e *env) register(t *testing.T, username, password string) *models.User {
	t.Helper()
	u, err := e.Auth.Register(context.Background(), service.RegisterInput{
		Username: username,
		FullName: "Test " + username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func (e *env) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p, err := e.Catalog.CreateProduct(context.Background(), service.CreateProductInput{Name: name, Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}
