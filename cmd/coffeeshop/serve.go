package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fsnd/coffee-shop/app"
	"github.com/fsnd/coffee-shop/config"
	"github.com/fsnd/coffee-shop/repositories/sqldb"
	"github.com/fsnd/coffee-shop/routes"
)

const readHeaderTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := net.Listen("tcp", c.cfg.Server.Address())
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", c.cfg.Server.Address(), err)
			}
			return runServer(cmd.Context(), c.cfg, c.logger, ln)
		},
	}
}

// runServer serves the API on ln until ctx is cancelled, then drains in-flight requests
// for at most the configured shutdown timeout.
func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, ln net.Listener) error {
	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database, logger); err != nil {
			_ = ln.Close()
			return err
		}
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			logger.Error("failed to close dependencies", zap.Error(err))
		}
	}()

	// Refuse to start without a usable key set rather than reject every request later
	if err := deps.LoadSigningKeys(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	server := &http.Server{
		Handler:           routes.SetupRoutes(deps),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", zap.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("server exited")
		return nil
	})

	return g.Wait()
}

func migrateUp(cfg config.DatabaseConfig, logger *zap.Logger) error {
	migrator, err := sqldb.NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("failed to close migrator", zap.Error(err))
		}
	}()
	return migrator.Up()
}
