package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prioboard/prioboard-backend/config"
	"github.com/prioboard/prioboard-backend/internal/bootstrap"
	"github.com/prioboard/prioboard-backend/internal/events"
	cronjob "github.com/prioboard/prioboard-backend/internal/tracker/cron"
	"github.com/prioboard/prioboard-backend/internal/tracker/repository"
	"github.com/prioboard/prioboard-backend/internal/tracker/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	var (
		store service.Store
		pool  *pgxpool.Pool
	)
	if cfg.Database.DSN != "" {
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		repo := repository.NewRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema: %v", err)
		}
		store = repo
	} else {
		log.Println("DB_DSN not set, using in-memory store")
		store = repository.NewMemoryRepo()
	}

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	broadcaster := events.NewBroadcaster(rdb, events.DefaultChannel)
	svc := service.NewTrackerService(store, broadcaster)

	cronjob.NewScheduler(svc, cfg.App.CompactSchedule).Start()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  "prioboard-backend",
		Version:      cfg.App.Version,
		AllowOrigins: cfg.Server.AllowOrigins,
		DB:           pool,
		Redis:        rdb,
		Service:      svc,
		Broadcaster:  broadcaster,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}
