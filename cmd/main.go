package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/ghostrace/internal/adapters/http/api"
	"github.com/okian/ghostrace/internal/adapters/http/swagger"
	"github.com/okian/ghostrace/internal/adapters/mq/queue"
	"github.com/okian/ghostrace/internal/adapters/pool"
	"github.com/okian/ghostrace/internal/adapters/repository"
	"github.com/okian/ghostrace/internal/adapters/tick"
	app "github.com/okian/ghostrace/internal/app"
	"github.com/okian/ghostrace/internal/config"
	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/pkg/logger"
	"github.com/okian/ghostrace/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(ctx, "ghostrace stopped with error", logger.Error(err))
	}
}

// run wires the process and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, notes, err := newService(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	defer func() { _ = notes.Close() }()

	driver := tick.NewDriver(svc,
		tick.WithInterval(cfg.TickInterval()),
		tick.WithName("race"),
		tick.WithLogger(log.Named("tick")),
	)
	go driver.Run(ctx)

	go startServiceMetricsUpdater(ctx, notes)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, notes,
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithDebugRoutes(cfg.DebugRoutes),
	).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := driver.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "tick driver shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newStore opens the configured save backend. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return repository.NewMemoryStore(), func() {}, nil
	case config.StorageRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		store, err := repository.NewRedisStore(client, repository.WithKey(cfg.RedisKey))
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		return store, func() { _ = client.Close() }, nil
	default:
		return repository.NewFileStore(cfg.SavePath), func() {}, nil
	}
}

// newService loads content and initializes the race service. Notifications
// are buffered in the returned queue for the HTTP layer.
func newService(ctx context.Context, cfg *config.Config, store repository.Store, log logger.Logger) (*app.Service, *queue.InMemoryQueue, error) {
	events, err := config.LoadEvents(ctx, cfg.EventsPath)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	bots := pool.NewLoader(cfg.BotPoolPath,
		pool.WithOverridePath(cfg.BotPoolOverridePath),
		pool.WithLogger(log.Named("pool")),
	).Load(ctx)

	host := &headlessHost{log: log.Named("host")}
	svc := app.New(
		app.WithLogger(log.Named("race")),
		app.WithLocation(loc),
		app.WithRewardGranter(host),
		app.WithAdWatcher(host),
		app.WithWallet(host),
	)

	notes := queue.NewInMemoryQueue(queue.WithCapacity(cfg.NotificationQueueSize))
	if err := svc.Initialize(ctx, events, store, cfg.InitialLevel, cfg.InTutorial, bots); err != nil {
		return nil, nil, err
	}
	svc.Subscribe(notes.Publish)
	return svc, notes, nil
}

// headlessHost stands in for the game economy when the service runs on its
// own: rewards are logged, ads count as watched and spends always succeed.
type headlessHost struct {
	log logger.Logger
}

func (h *headlessHost) GrantReward(ctx context.Context, r model.Reward) bool {
	h.log.Info(ctx, "reward granted", logger.Int("coins", r.Coins), logger.Any("items", r.Items))
	return true
}

func (h *headlessHost) WatchAd(ctx context.Context) bool {
	h.log.Info(ctx, "ad watched")
	return true
}

func (h *headlessHost) Spend(ctx context.Context, coins int) bool {
	h.log.Info(ctx, "coins spent", logger.Int("coins", coins))
	return true
}

// startServiceMetricsUpdater publishes the notification backlog.
func startServiceMetricsUpdater(ctx context.Context, notes *queue.InMemoryQueue) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateNotificationQueueSize(notes.Len())
		}
	}
}
