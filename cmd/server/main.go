package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/api"
	"github.com/playmatatu/billiards/internal/api/handlers"
	"github.com/playmatatu/billiards/internal/config"
	"github.com/playmatatu/billiards/internal/database"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/migrations"
	"github.com/playmatatu/billiards/internal/redis"
	"github.com/playmatatu/billiards/internal/store"
	"github.com/playmatatu/billiards/internal/ws"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize configuration (loads .env when present)
	cfg := config.Load()

	if cfg.IsProduction() && (cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production") {
		log.Fatalf("JWT_SECRET must be set in production")
	}

	table, err := cfg.Table()
	if err != nil {
		log.Fatalf("Invalid table geometry: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Shot ledger (optional)
	var recorder game.ShotRecorder
	var history handlers.SessionHistory
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if _, err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		st := store.New(db)
		rec := store.NewRecorder(st, 1024)
		g.Go(func() error { return rec.Run(ctx) })
		recorder = rec
		history = st
	} else {
		log.Println("[DB] DATABASE_URL not set - shot ledger disabled")
	}

	// Snapshot cache and event channel (optional)
	var relay *ws.EventRelay
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rdb = client
		relay = ws.NewEventRelay(client)
		g.Go(func() error { return relay.Run(ctx) })
	} else {
		log.Println("[REDIS] REDIS_URL not set - snapshot cache disabled")
	}

	manager := game.NewSessionManager(cfg.SessionOptions(table), rdb, recorder)
	g.Go(func() error { return manager.Run(ctx) })
	game.StartIdleWorker(ctx, manager, time.Duration(cfg.IdleCheckSeconds)*time.Second)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, manager, history, relay, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	g.Go(func() error {
		log.Printf("Starting billiards server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("Shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
