// @title baby-care-log API
// @version 1.0
// @description Registro de eventos de cuidado del bebé.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"baby-care-log/internal/adapters/auth/static"
	pg "baby-care-log/internal/adapters/storage/postgres"
	"baby-care-log/internal/platform/config"
	"baby-care-log/internal/platform/logger"
	"baby-care-log/internal/ports/auth"
	"baby-care-log/internal/router"

	"golang.org/x/sync/errgroup"
)

func main() {
	// YAML opcional en CONFIG_FILE; el resto sale de env.
	cfg, err := config.Load("")
	if err != nil {
		logger.NewFromEnv().Error("config", map[string]any{"error": err})
		os.Exit(1)
	}
	log := cfg.Log.Logger(os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{Logger: log}

	if cfg.DB.DSN != "" {
		db, err := pg.Open(cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.DB = db
	}

	// Sin tokens configurados: modo dev (X-Debug-User-ID).
	if v := static.NewVerifier(cfg.Auth.Tokens); !v.Empty() {
		opts.AuthVerifier = auth.AuthVerifier(v)
	} else {
		log.Warn("auth: dev mode, X-Debug-User-ID accepted", nil)
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
