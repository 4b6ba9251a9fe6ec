package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ManourasM/TavernAI-sub000/internal/broadcast"
	"github.com/ManourasM/TavernAI-sub000/internal/catalog"
	"github.com/ManourasM/TavernAI-sub000/internal/config"
	"github.com/ManourasM/TavernAI-sub000/internal/database"
	"github.com/ManourasM/TavernAI-sub000/internal/handler"
	"github.com/ManourasM/TavernAI-sub000/internal/ledger"
	"github.com/ManourasM/TavernAI-sub000/internal/nlp"
	"github.com/ManourasM/TavernAI-sub000/internal/queue"
	"github.com/ManourasM/TavernAI-sub000/internal/repository"
	"github.com/ManourasM/TavernAI-sub000/internal/router"
	queue_publisher "github.com/ManourasM/TavernAI-sub000/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	menus := repository.NewMenuRepo(db)
	stations := repository.NewStationRepo(db)
	corrections := repository.NewCorrectionRepo(db)
	receipts := repository.NewReceiptRepo(db)

	if err := stations.Seed(ctx); err != nil {
		log.Fatalf("seed stations: %v", err)
	}

	// warm the active menu and the correction rules
	cat := catalog.NewStore()
	version, items, err := menus.LatestVersion(ctx)
	switch {
	case err == nil:
		cat.Swap(version, items)
		log.Printf("menu version %d active with %d items", version.ID, len(items))
	case errors.Is(err, repository.ErrNoMenu):
		log.Printf("no menu uploaded yet; every line will be unclassified")
	default:
		log.Fatalf("load menu: %v", err)
	}

	rules := nlp.NewRuleTable()
	stored, err := corrections.All(ctx)
	if err != nil {
		log.Fatalf("load corrections: %v", err)
	}
	rules.Load(stored)
	log.Printf("%d correction rules loaded", rules.Len())

	hub := broadcast.NewRegistry()
	stationList, err := stations.List(ctx)
	if err != nil {
		log.Fatalf("list stations: %v", err)
	}
	var catchAll []string
	for _, st := range stationList {
		if st.CatchAll && st.Active {
			catchAll = append(catchAll, st.Key)
		}
	}
	hub.SetCatchAll(catchAll)

	led := ledger.New(hub, receipts, queue_publisher.NewFinalizeHook(cfg.AMQPURL))

	if cfg.AMQPURL != "" {
		go queue.StartReceiptConsumer(cfg.AMQPURL)
	}

	if cfg.RetentionDays > 0 {
		retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
		go func() {
			for range time.Tick(time.Hour) {
				if n := led.Purge(retention); n > 0 {
					log.Printf("purged %d stale lines", n)
				}
			}
		}()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; caching and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Orders:      handler.NewOrderHandler(led, cat, rules),
		Menu:        handler.NewMenuHandler(menus, cat),
		Stations:    handler.NewStationHandler(stations, hub),
		Corrections: handler.NewCorrectionHandler(corrections, rules, cat),
		Receipts:    handler.NewReceiptHandler(receipts),
		Socket:      handler.NewSocketHandler(hub, led, stations),
	}, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
