package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/bookingapi"
	server "staybook/internal/adapters/http_server"
	"staybook/internal/adapters/notify"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/shared"
	"staybook/internal/storage/memory"
	mysqlrepo "staybook/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	client, err := bookingapi.New(cfg.BackendBase, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	if err := client.Health(ctx); err != nil {
		log.Warn().Err(err).Str("base", cfg.BackendBase).Msg("backend health check failed, continuing")
	}

	// deps
	var (
		stores domain.StoreFactory
		cache  domain.Cache = memory.NewCache()
	)
	switch cfg.StoreDriver {
	case shared.StoreRedis:
		rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		stores = redisad.NewFactory(rc, cfg.SessionTTL)
		cache = redisad.NewCache(rc)
	case shared.StoreMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo := mysqlrepo.New(db)
		stores = repo
		go purgeIdle(ctx, repo, cfg.SessionTTL)
	default:
		f := memory.NewFactory()
		stores = f
		go purgeIdle(ctx, f, cfg.SessionTTL)
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("session store ready")

	sessions := app.NewSessionManager(
		stores,
		func(st domain.KVStore, n domain.Notifier) app.Backend { return client.WithSession(st, n) },
		func() app.NoticeQueue { return notify.NewFlash(log.Logger) },
		app.SessionConfig{RefreshEvery: cfg.RefreshEvery, PageSize: cfg.PageSize},
	)
	defer sessions.Close()
	go sessions.Run(ctx, time.Minute)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Sessions:      sessions,
		Catalog:       app.NewCatalogService(client, cache, cfg.CacheTTL),
		Cookie:        cfg.SessionCookie,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.AppEnv == "prod",
		FeaturedLimit: cfg.WarmFeatured,
	})

	if err := srv.Run(ctx, cfg.HTTPAddr, 10*time.Second); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// idlePurger drops session data nobody touched within ttl.
type idlePurger interface {
	PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error)
}

func purgeIdle(ctx context.Context, p idlePurger, ttl time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PurgeIdle(ctx, ttl)
			if err != nil {
				log.Warn().Err(err).Msg("purge idle sessions failed")
				continue
			}
			log.Info().Int64("rows", n).Msg("idle sessions purged")
		}
	}
}
