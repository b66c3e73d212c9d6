package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "structured_markup/internal/adapters/http_server"
	"structured_markup/internal/adapters/observability"
	redisad "structured_markup/internal/adapters/redis"
	"structured_markup/internal/app"
	"structured_markup/internal/domain"
	"structured_markup/internal/schema"
	"structured_markup/internal/shared"
	mysqlrepo "structured_markup/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(ctx); err != nil {
			// renders still work straight from MySQL
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		cancel()
		cache = rc
	}
	rs := app.NewRenderService(repo, cache, cfg.CacheTTL, schema.DefaultRegistry(cfg.GateMode()))

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: rs})

	log.Info().Str("addr", cfg.HTTPAddr).Bool("name_gated", cfg.NameGated).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
