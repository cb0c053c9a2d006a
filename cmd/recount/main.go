// Command recount re-derives the room counters of every hostel from its room
// rows. Normally the counters are maintained inside each write transaction;
// this repairs drift after manual data fixes or a bad migration.
package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Mr-fuaaaadh/hostelmate/internal/adapters/observability"
	redisad "github.com/Mr-fuaaaadh/hostelmate/internal/adapters/redis"
	"github.com/Mr-fuaaaadh/hostelmate/internal/app"
	"github.com/Mr-fuaaaadh/hostelmate/internal/shared"
	mysqlrepo "github.com/Mr-fuaaaadh/hostelmate/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv).With().Str("cmd", "recount").Logger()

	log.Info().
		Int("workers", cfg.Workers).
		Msg("recount starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	registry := app.NewRegistry(repo)
	rooms := app.NewRoomCountMaintainer(log.Logger)
	invalidator := app.NewInvalidator(cache, log.Logger)
	orch := app.NewOrchestrator(repo, nil, registry, rooms, log.Logger, invalidator)

	ids, err := repo.ListHostelIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing hostel ids failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		id := id

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hostelID int64) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := orch.RecountHostel(ctx, hostelID); err != nil {
				log.Warn().Int64("id", hostelID).Err(err).Msg("recount failed")
				return
			}
			log.Info().Int64("id", hostelID).Msg("recount ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("recount completed")
}
