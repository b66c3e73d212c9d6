package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"structured_markup/internal/adapters/observability"
	redisad "structured_markup/internal/adapters/redis"
	"structured_markup/internal/adapters/remote"
	"structured_markup/internal/app"
	"structured_markup/internal/domain"
	"structured_markup/internal/shared"
	mysqlrepo "structured_markup/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	log.Info().
		Str("base", cfg.RemoteBase).
		Int("workers", cfg.Workers).
		Int("rps", cfg.RemoteRPS).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := remote.New(cfg.RemoteBase, cfg.RemoteKey, cfg.RemoteRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize remote export client")
	}
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	svc := app.NewSyncService(client, repo, cache)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var (
		wg     sync.WaitGroup
		total  atomic.Int64
		failed atomic.Int32
	)

	for _, c := range domain.Categories {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(c domain.Category) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := svc.SyncCategory(ctx, c)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("category", string(c)).Err(err).Msg("sync failed")
				return
			}
			total.Add(int64(n))
			log.Info().Str("category", string(c)).Int("records", n).Msg("sync ok")
		}(c)
	}

	wg.Wait()
	log.Info().Int64("records", total.Load()).Int32("failed", failed.Load()).Msg("import completed")
	if failed.Load() > 0 {
		log.Fatal().Msg("import finished with failures")
	}
}
