package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"maklarsystem/internal/audit"
	biddinghandler "maklarsystem/internal/bidding/handler"
	"maklarsystem/internal/bidding/lock"
	biddingmetrics "maklarsystem/internal/bidding/metrics"
	"maklarsystem/internal/bidding/service"
	"maklarsystem/internal/bidding/store"
	"maklarsystem/internal/platform/config"
	"maklarsystem/internal/platform/httpserver"
	"maklarsystem/internal/platform/logger"
	"maklarsystem/internal/platform/metrics"
	"maklarsystem/internal/platform/redis"
	"maklarsystem/internal/ratelimit"
	httptransport "maklarsystem/internal/transport/http"
	validationhandler "maklarsystem/internal/validation/handler"
	validationmetrics "maklarsystem/internal/validation/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(cfg.Server.LogFormat, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// backends holds whatever run opened and must close on exit.
type backends struct {
	bids    service.Store
	locks   service.Locker
	checks  map[string]httptransport.HealthCheck
	closers []func() error
}

func (b *backends) close(log *slog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Warn("close backend", "error", err)
		}
	}
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{checks: map[string]httptransport.HealthCheck{}}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Storage.DSN)
		if err != nil {
			return b, fmt.Errorf("open postgres: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return b, fmt.Errorf("ping postgres: %w", err)
		}
		if err := store.Migrate(ctx, db); err != nil {
			return b, err
		}
		b.bids = store.NewPostgres(db)
		b.checks["postgres"] = db.PingContext
	default:
		b.bids = store.NewMemory()
	}

	switch cfg.Lock.Driver {
	case config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return b, err
		}
		b.closers = append(b.closers, client.Close)
		b.locks = lock.NewRedis(client.Client, lock.WithTTL(cfg.Lock.TTL), lock.WithRedisWait(cfg.Lock.Wait))
		b.checks["redis"] = client.Health
	default:
		b.locks = lock.NewMemory(lock.WithMemoryWait(cfg.Lock.Wait))
	}
	return b, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	b, err := openBackends(ctx, cfg)
	defer b.close(log)
	if err != nil {
		return err
	}

	auditStore := audit.NewMemoryStore()
	auditLog := audit.NewPublisher(audit.DefaultBuffer, log)

	bids, err := service.New(b.bids, b.locks, cfg.Bidding.AcceptPolicy,
		service.WithLogger(log),
		service.WithAuditor(auditLog),
		service.WithMetrics(biddingmetrics.New()),
		service.WithMinimumIncrement(cfg.Bidding.MinimumIncrement),
	)
	if err != nil {
		return fmt.Errorf("bidding service: %w", err)
	}

	window := ratelimit.NewWindow()
	limiter := ratelimit.New(window, log, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Metrics:        metrics.New(),
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      limiter.Handler,
		Checks:         b.checks,
	},
		validationhandler.New(log, validationmetrics.New()),
		biddinghandler.New(bids, log),
		audit.NewHandler(auditStore, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return audit.NewWorker(auditStore, auditLog.Events(), log).Run(gctx)
	})
	if cfg.RateLimit.Requests > 0 {
		g.Go(func() error {
			ratelimit.SweepEvery(gctx, window, cfg.RateLimit.Window, cfg.RateLimit.Window)
			return nil
		})
	}
	g.Go(func() error {
		log.Info("listening",
			"addr", cfg.Server.Addr,
			"storage", cfg.Storage.Driver,
			"lock", cfg.Lock.Driver,
			"accept_policy", string(cfg.Bidding.AcceptPolicy),
			"minimum_increment", bids.MinimumIncrement(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
