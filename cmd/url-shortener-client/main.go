package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/url-shortener-client/internal/config"
	"github.com/vadimbarashkov/url-shortener-client/internal/credstore"
	"github.com/vadimbarashkov/url-shortener-client/internal/gateway"
	"github.com/vadimbarashkov/url-shortener-client/internal/linklist"
	"github.com/vadimbarashkov/url-shortener-client/internal/session"
	"github.com/vadimbarashkov/url-shortener-client/internal/transient"
	"github.com/vadimbarashkov/url-shortener-client/pkg/sqlite"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/vadimbarashkov/url-shortener-client/internal/api/http"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Credentials.Path), 0o700); err != nil {
		return err
	}

	if err := sqlite.RunMigrations(cfg.Credentials.MigrationsPath, cfg.Credentials.MigrateDSN()); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	db, err := sqlite.New(ctx, cfg.Credentials.DSN())
	if err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		return db.Close()
	})

	creds := credstore.New(db)
	gw := gateway.New(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})

	sess := session.New(creds, gw)

	flags := transient.NewStore()
	g.Go(func() error {
		<-ctx.Done()
		flags.Close()
		return nil
	})

	list := linklist.New(gw, sess, flags)
	sess.OnInvalidated(list.Reset)

	if err := sess.Bootstrap(ctx); err != nil {
		return err
	}

	logger := httplog.NewLogger("url-shortener-client", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  cfg.Env == config.EnvDev,
		JSON:     cfg.Env == config.EnvProd,
	})

	r := myhttp.NewRouter(logger, gw, sess, list, flags, cfg.CopiedFlagTTL)

	server := &http.Server{
		Addr:           cfg.LocalServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.LocalServer.ReadTimeout,
		WriteTimeout:   cfg.LocalServer.WriteTimeout,
		IdleTimeout:    cfg.LocalServer.IdleTimeout,
		MaxHeaderBytes: cfg.LocalServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g.Go(func() error {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}
