package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	httptransport "github.com/desivolt/muzdesk/internal/api/http"
	"github.com/desivolt/muzdesk/internal/api/http/handlers"
	"github.com/desivolt/muzdesk/internal/auth"
	"github.com/desivolt/muzdesk/internal/config"
	"github.com/desivolt/muzdesk/internal/domain"
	"github.com/desivolt/muzdesk/internal/events"
	"github.com/desivolt/muzdesk/internal/observability"
	"github.com/desivolt/muzdesk/internal/persistence"
	"github.com/desivolt/muzdesk/internal/repository"
	"github.com/desivolt/muzdesk/internal/service"
	"github.com/desivolt/muzdesk/internal/session"
	"github.com/desivolt/muzdesk/internal/worker"
)

// App is the wired service: stores, workflows, workers and the HTTP server.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	Fiber   *fiber.App
	Metrics *observability.Metrics
	Feed    *events.Feed
	Catalog *domain.Catalog

	redis   *persistence.Redis
	relay   *events.RedisRelay
	sweeper *worker.OverdueSweeper
	cron    *cron.Cron
	cancel  context.CancelFunc
	closers []func()
}

// New opens the configured stores and wires every component. Nothing runs
// in the background until Start.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		Metrics: observability.NewMetrics(),
		Feed:    events.NewFeed(),
	}

	tickets, store, err := a.openTicketStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.redis = persistence.NewRedis(cfg.Redis, logger)
	a.closers = append(a.closers, a.redis.Close)

	accounts, err := LoadAccounts(cfg.Accounts, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	directory, err := auth.NewDirectory(accounts.Accounts, cfg.Auth.BcryptCost)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = domain.NewCatalog(append(append([]domain.PriceEntry{}, domain.DefaultPriceList...), accounts.Prices...))

	var sessions session.Store
	if cfg.Session.Store == config.SessionStoreRedis && a.redis.Enabled() {
		sessions = session.NewRedisStore(a.redis.Client, cfg.Session.KeyPrefix)
	} else {
		sessions = session.NewMemoryStore()
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	dispatcher := events.NewInMemoryDispatcher()
	var sink events.Sink = a.Feed
	if a.redis.Enabled() {
		a.relay = events.NewRedisRelay(a.redis.Client, cfg.Redis.ChangeChannel, a.Feed, logger)
		sink = a.relay
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), dispatcher, sink)
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			a.Metrics.RecordEvent(string(event.Type))
			return nil
		})
	}

	customerService := service.NewCustomerService(service.CustomerDependencies{
		TicketRepo: tickets,
		Dispatcher: dispatcher,
		Catalog:    a.Catalog,
		Logger:     logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		TicketRepo: tickets,
		Directory:  directory,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	electricianService := service.NewElectricianService(service.ElectricianDependencies{
		TicketRepo: tickets,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		Accounts: directory,
		Sessions: sessions,
		Tokens:   tokens,
		Logger:   logger,
	})

	a.sweeper = worker.NewOverdueSweeper(tickets, cfg.SLA.Window(), logger)

	a.Fiber = fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(a.Fiber, logger, a.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(a.Fiber, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, store, a.redis, a.Metrics),
		Customer:       handlers.NewCustomerHandler(customerService, a.Feed, a.Metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(adminService, a.Catalog, a.Feed, a.Metrics),
		Electrician:    handlers.NewElectricianHandler(electricianService, a.Catalog, a.Feed, a.Metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions),
	})

	return a, nil
}

func (a *App) openTicketStore(ctx context.Context) (repository.TicketRepository, handlers.Pinger, error) {
	switch a.cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		if a.cfg.Postgres.RunMigrations {
			if _, err := persistence.RunMigrations(ctx, pg.PoolHandle(), a.cfg.Postgres.MigrationsDir, a.logger); err != nil {
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return repository.NewTicketRepository(pg.PoolHandle()), pg, nil
	case config.StoreDriverSQLite:
		lite, err := persistence.NewSQLite(ctx, a.cfg.SQLite, a.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, lite.Close)
		return repository.NewSQLiteTicketRepository(lite.DB), lite, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
}

// Start launches the change-feed relay and the overdue sweep.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if a.relay != nil {
		go func() {
			if err := a.relay.Run(ctx); err != nil {
				a.logger.Error("change feed relay stopped", zap.Error(err))
			}
		}()
	}

	c, err := worker.StartSLAWorker(a.cfg.SLA, a.sweeper, a.logger)
	if err != nil {
		return err
	}
	a.cron = c
	return nil
}

// Listen serves HTTP until Shutdown.
func (a *App) Listen() error {
	a.logger.Info("http server listening", zap.String("addr", a.cfg.App.Addr()))
	return a.Fiber.Listen(a.cfg.App.Addr())
}

// Shutdown stops background work, drains HTTP, and closes the stores.
func (a *App) Shutdown(timeout time.Duration) error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	// Ending the feed lets open streams finish so the server can drain.
	a.Feed.Close()

	var err error
	if a.Fiber != nil {
		err = a.Fiber.ShutdownWithTimeout(timeout)
	}
	a.Close()
	return err
}

// Close releases stores in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// LoadAccounts reads the allow-list file, or falls back to the built-in
// development accounts when none is configured.
func LoadAccounts(cfg config.AccountsConfig, logger *zap.Logger) (*config.AccountsFile, error) {
	if cfg.File == "" {
		logger.Warn("ACCOUNTS_FILE not set; using built-in development accounts")
		return &config.AccountsFile{Accounts: config.DevAccounts}, nil
	}
	file, err := config.LoadAccountsFile(cfg.File)
	if err != nil {
		return nil, err
	}
	for _, acct := range file.Accounts {
		if acct.PasswordHash == "" {
			logger.Warn("account uses a plaintext password; store a bcrypt hash instead",
				zap.String("username", acct.Username))
		}
	}
	return file, nil
}

// ErrNoStore is returned by Sweep when no ticket store is wired.
var ErrNoStore = errors.New("ticket store not configured")

// Sweep runs the overdue sweep once.
func (a *App) Sweep(ctx context.Context) ([]domain.Ticket, error) {
	if a.sweeper == nil {
		return nil, ErrNoStore
	}
	return a.sweeper.Sweep(ctx)
}
