package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staybook/internal/adapters/bookingapi"
	"staybook/internal/adapters/notify"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/shared"
	mysqlrepo "staybook/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.BackendBase).
		Int("workers", cfg.WarmWorkers).
		Int("featured", cfg.WarmFeatured).
		Msg("warmer starting")

	client, err := bookingapi.New(cfg.BackendBase, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	api := client.WithSession(nil, notify.NewLog(log.Logger))

	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	// misses go to MySQL only when it is the configured store
	var misses app.MissLog
	if cfg.StoreDriver == shared.StoreMySQL {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		misses = mysqlrepo.New(db)
	}

	catalog := app.NewCatalogService(api, redisad.NewCache(rc), cfg.CacheTTL)
	warm := app.NewWarmService(catalog, misses)

	// the backend may still be starting after a deploy
	ids, err := bookingapi.WithRetry(ctx, bookingapi.DefaultRetryConfig(), func(ctx context.Context) ([]string, error) {
		return warm.WarmFeatured(ctx, cfg.WarmFeatured)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("featured hotels could not be loaded")
	}

	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := warm.WarmHotel(ctx, hotelID); err != nil {
				log.Warn().Str("id", hotelID).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("id", hotelID).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int("hotels", len(ids)).Msg("warming completed")
}
