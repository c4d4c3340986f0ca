package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/1008surajshaw/meds-buddy/internal/adapters/auth/jwtverifier"
	"github.com/1008surajshaw/meds-buddy/internal/adapters/auth/remote"
	pg "github.com/1008surajshaw/meds-buddy/internal/adapters/storage/postgres"
	"github.com/1008surajshaw/meds-buddy/internal/config"
	"github.com/1008surajshaw/meds-buddy/internal/jobs"
	"github.com/1008surajshaw/meds-buddy/internal/platform/logger"
	"github.com/1008surajshaw/meds-buddy/internal/ports/auth"
	"github.com/1008surajshaw/meds-buddy/internal/router"
)

// @title meds-buddy API
// @version 1.0
// @description Medicamentos, registro de tomas, cuidadores y métricas de adherencia.
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meds-buddy: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App,
		File: logger.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(cfg.Auth, log)
	if err != nil {
		return err
	}
	if verifier == nil {
		log.Warn("auth disabled, accepting X-Debug-User-ID", nil)
	}

	var db *sql.DB
	if cfg.DB.DSN != "" {
		db, err = pg.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		if cfg.DB.Migrate {
			if err := pg.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("schema applied", nil)
		}
	} else {
		log.Warn("DB DSN not set, using in-memory storage", nil)
	}

	opts := router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Logger:       log,
		Parallelism:  cfg.Digest.Parallelism,
	}
	svcs := router.NewServices(opts)

	var digest *jobs.Digest
	if cfg.Digest.Enabled {
		digest = jobs.NewDigest(svcs.Medications, svcs.Adherence, log, cfg.Digest.Schedule)
		if err := digest.Start(); err != nil {
			return fmt.Errorf("digest: %w", err)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouterWithServices(opts, svcs),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", map[string]any{"err": err})
	}
	if digest != nil {
		digest.Stop(shutdownCtx)
	}
	return nil
}

// newVerifier: secreto JWT > servicio remoto > nil (modo dev).
func newVerifier(cfg config.AuthConfig, log logger.Logger) (auth.AuthVerifier, error) {
	switch {
	case cfg.JWTSecret != "":
		return jwtverifier.New(cfg.JWTSecret, cfg.JWTIssuer)
	case cfg.RemoteURL != "":
		return remote.New(remote.Config{
			BaseURL: cfg.RemoteURL,
			APIKey:  cfg.RemoteAPIKey,
			Timeout: cfg.RemoteTimeout,
		}, log)
	default:
		return nil, nil
	}
}
