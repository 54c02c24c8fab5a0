// Package app wires configuration, the store backend, the storage stack
// and the background jobs into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/pathways/internal/compat"
	"github.com/MrSnakeDoc/pathways/internal/config"
	"github.com/MrSnakeDoc/pathways/internal/httpserver"
	"github.com/MrSnakeDoc/pathways/internal/httpserver/deps"
	"github.com/MrSnakeDoc/pathways/internal/linkcheck"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/redis"
	"github.com/MrSnakeDoc/pathways/internal/remote"
	"github.com/MrSnakeDoc/pathways/internal/scheduler"
	"github.com/MrSnakeDoc/pathways/internal/storage"
	"github.com/MrSnakeDoc/pathways/internal/store"
	"github.com/MrSnakeDoc/pathways/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/pathways/internal/store/redis"
	"github.com/MrSnakeDoc/pathways/internal/store/sqlite"
	"github.com/MrSnakeDoc/pathways/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	redisClient *goredis.Client
	manager     *storage.Manager
	adapter     *compat.Adapter
}

// New selects the store backend and starts opening it in the background.
// It never blocks on the backend: operations wait for the open instead.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	log.Debug("configuration loaded", logger.Any("config", cfg.Redacted()))

	s, client, err := newStore(cfg, log)
	if err != nil {
		return nil, err
	}

	m := storage.Open(ctx, s, log)
	return &App{
		cfg:         cfg,
		logger:      log,
		redisClient: client,
		manager:     m,
		adapter:     compat.New(m, log),
	}, nil
}

// newStore builds the configured backend. The redis client is returned
// for the status endpoint; it is nil for the other backends.
func newStore(cfg *config.Config, log logger.Logger) (store.Store, *goredis.Client, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("using the in-memory store, data is lost on exit")
		return memory.New(), nil, nil

	case config.BackendSQLite:
		log.Info("using sqlite store", logger.String("path", cfg.SQLitePath))
		return sqlite.New(cfg.SQLitePath), nil, nil

	case config.BackendRedis:
		opts := redis.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}
		if err := opts.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid redis options: %w", err)
		}

		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client := redis.NewClient(opts)
		s := redisstore.NewStore(client,
			redisstore.WithPrefix(cfg.RedisPrefix),
			redisstore.WithReadiness(func(ctx context.Context) error {
				return redis.WaitReady(ctx, client, opts, log)
			}),
		)
		return s, client, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Manager is the storage manager backing every surface.
func (a *App) Manager() *storage.Manager { return a.manager }

// Adapter is the bulk key/value API over the manager.
func (a *App) Adapter() *compat.Adapter { return a.adapter }

// Close releases the store backend.
func (a *App) Close() error {
	if err := a.manager.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

// Run serves HTTP and runs the background jobs until ctx is done, then
// shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting Pathways %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Pathways %s", version.String())

	inbox := scheduler.NewInbox(scheduler.DefaultInboxSize, a.logger)
	legacy := compat.NewLegacy(ctx, a.adapter, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.SeedFile != "" {
		seeder := scheduler.NewSeeder(a.cfg.SeedFile, a.manager, a.adapter, a.logger)
		g.Go(func() error {
			if _, err := seeder.Seed(gctx); err != nil {
				// A bad seed file should not take the service down.
				a.logger.Error("seed import failed", logger.Error(err))
				inbox.Notify(scheduler.Notice{
					Level:   "error",
					Source:  "seed",
					Message: err.Error(),
				})
			}
			return nil
		})
	}

	var commitTrigger chan struct{}
	if a.cfg.AutoCommitInterval > 0 {
		commitTrigger = make(chan struct{}, 1)
		committer := scheduler.NewAutoCommitter(
			a.manager,
			remote.NewDirCommitter(a.cfg.CommitDir, a.manager, a.logger),
			inbox,
			a.logger,
			a.cfg.AutoCommitInterval,
			commitTrigger,
		)
		g.Go(func() error { return committer.Run(gctx) })
	} else {
		a.logger.Info("auto-commit disabled")
	}

	if a.cfg.LinkCheckInterval > 0 {
		auditor := scheduler.NewLinkAuditor(
			a.manager,
			linkcheck.New(a.cfg.LinkCheckTimeout),
			a.logger,
			a.cfg.LinkCheckInterval,
		)
		g.Go(func() error { return auditor.Run(gctx) })
	} else {
		a.logger.Info("link audit disabled")
	}

	d := deps.Deps{
		Logger:        a.logger,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  a.cfg.AllowedHosts,
		AllowedCIDRS:  a.cfg.AllowedCIDRS,
		TrustProxy:    a.cfg.TrustProxy,
		RateBurst:     a.cfg.RateBurst,
		RatePerMin:    a.cfg.RatePerMin,
		Backend:       string(a.cfg.Backend),
		Readiness:     a.manager,
		Pathways:      a.manager,
		Storage:       legacy,
		Notices:       inbox,
		RedisClient:   a.redisClient,
		CommitTrigger: commitTrigger,
		LinkAudit:     a.cfg.LinkCheckInterval > 0,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()

	// Callbacks still in flight must finish before the store goes away.
	legacy.Wait()
	if cerr := a.Close(); cerr != nil {
		a.logger.Warn("failed to close store", logger.Error(cerr))
	} else {
		a.logger.Info("✅ Store closed cleanly")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("✅ Pathways stopped cleanly")
	return nil
}
