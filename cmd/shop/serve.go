package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/hash"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/mykafka"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, overrides HTTP_ADDR")
	_ = v.BindPFlag("HTTP_ADDR", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, gdb, l, err := boot(ctx, v)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			l.Error("db_close_failed", "error", err)
		}
	}()

	if err := repo.Migrate(ctx, gdb); err != nil {
		return err
	}

	tok, err := tokens.New(tokens.Config{
		Secret:     cfg.SecretKey,
		Algorithm:  cfg.Algorithm,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	r := repo.New(gdb)
	ready := []httpserver.ReadyCheck{{Name: "database", Check: r.Ping}}

	authSvc := &service.AuthService{Repo: r, Hasher: hash.New(cfg.BcryptCost), Tokens: tok, Metrics: m}
	catalogSvc := &service.CatalogService{Repo: r}
	cartSvc := &service.CartService{Repo: r, Metrics: m}
	commentSvc := &service.CommentService{Repo: r}

	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer func() {
			if err := prod.Close(); err != nil {
				l.Error("kafka_close_failed", "error", err)
			}
		}()
		if err := mykafka.EnsureTopics(ctx, cfg.KafkaBrokers[0], service.Topics()...); err != nil {
			l.Warn("kafka_topics_not_created", "error", err)
		}
		authSvc.Events = prod
		catalogSvc.Events = prod
		cartSvc.Events = prod
		commentSvc.Events = prod
		l.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	if cfg.ESURL != "" {
		sc, err := search.NewClient(search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			return err
		}
		if err := sc.EnsureIndex(ctx); err != nil {
			l.Warn("search_index_not_ready", "error", err)
		}
		catalogSvc.Search = sc
		cartSvc.Search = sc
		ready = append(ready, httpserver.ReadyCheck{Name: "search", Check: sc.Ping})
		l.Info("search_enabled", "url", cfg.ESURL, "index", cfg.ESIndex)
	}

	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		pc := &cache.ProductCache{RDB: rdb, TTL: cfg.ProductsCacheTTL, Metrics: m}
		catalogSvc.Cache = pc
		cartSvc.Cache = pc
		l.Info("cache_enabled", "addr", cfg.RedisAddr, "ttl", cfg.ProductsCacheTTL)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(l),
		m.Middleware(),
		middleware.CORS(),
	)

	httpserver.Register(e, &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: authSvc},
		Catalog:  &httpserver.CatalogHTTP{Svc: catalogSvc},
		Cart:     &httpserver.CartHTTP{Svc: cartSvc},
		Comments: &httpserver.CommentHTTP{Svc: commentSvc},
		Ready:    ready,
		Metrics:  m.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("http_shutdown_failed", "error", err)
	}
	l.Info("shutdown_complete")
	return nil
}
