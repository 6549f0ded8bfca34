package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rongwang/stonks/internal/api"
	"github.com/rongwang/stonks/internal/config"
	"github.com/rongwang/stonks/internal/idgen"
	"github.com/rongwang/stonks/internal/repository"
	"github.com/rongwang/stonks/internal/service"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if migrateFirst {
				if err := config.RunMigrations(cfg); err != nil {
					return err
				}
			}

			// Set up database connection
			db, err := config.SetupDatabase(cfg)
			if err != nil {
				return errors.Wrap(err, "failed to set up database")
			}
			store := repository.NewStore(db, cfg.Database.Dialect(), repository.Options{
				MaxAttempts:    cfg.Ledger.MaxTxAttempts,
				AttemptTimeout: cfg.Ledger.AttemptTimeout,
			}, logger)
			defer store.Close()

			svc := service.NewDefaultService(store, idgen.New(nil), logger)
			handler := api.NewHandler(svc, logger)

			// Set up Gin router
			gin.SetMode(cfg.Server.Mode)
			router := gin.New()
			router.Use(gin.Recovery())
			router.Use(api.RequestIDMiddleware(logger))
			router.Use(api.SecretMiddleware([]byte(cfg.Auth.JWTSecret)))
			handler.SetupRoutes(router)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting server on %s (%s)", srv.Addr, cfg.Database.Driver)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "failed to start server")
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply migrations before serving")
	return cmd
}
