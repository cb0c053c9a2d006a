package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/Mr-fuaaaadh/hostelmate/internal/adapters/http_server"
	"github.com/Mr-fuaaaadh/hostelmate/internal/adapters/imagestore"
	"github.com/Mr-fuaaaadh/hostelmate/internal/adapters/observability"
	redisad "github.com/Mr-fuaaaadh/hostelmate/internal/adapters/redis"
	"github.com/Mr-fuaaaadh/hostelmate/internal/app"
	"github.com/Mr-fuaaaadh/hostelmate/internal/shared"
	mysqlrepo "github.com/Mr-fuaaaadh/hostelmate/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv).With().Str("cmd", "api").Logger()

	observability.Serve()

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
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	images, err := imagestore.New(cfg.ImageBase, cfg.ImageKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize image store client")
	}

	registry := app.NewRegistry(repo)
	rooms := app.NewRoomCountMaintainer(log.Logger)
	invalidator := app.NewInvalidator(cache, log.Logger)
	orch := app.NewOrchestrator(repo, images, registry, rooms, log.Logger, invalidator)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL, cfg.SuggestionMin)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, O: orch})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
