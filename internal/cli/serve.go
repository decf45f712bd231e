package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/app"
	"github.com/desivolt/muzdesk/internal/config"
	"github.com/desivolt/muzdesk/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the complaint service.

Configuration comes from the environment (and a .env file when present).
Without POSTGRES_DSN tickets are kept in the SQLite file at SQLITE_PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if err := a.Start(ctx); err != nil {
				a.Close()
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- a.Listen()
			}()

			select {
			case err := <-errCh:
				_ = a.Shutdown(shutdownTimeout)
				return fmt.Errorf("http server: %w", err)
			case sig := <-shutdownSignal():
				logger.Info("shutting down", zap.String("signal", sig.String()))
			}
			return a.Shutdown(shutdownTimeout)
		},
	}
}

func shutdownSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, logger, nil
}
