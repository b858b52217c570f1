package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scythe504/skribbl-roomrt/internal/config"
	"github.com/scythe504/skribbl-roomrt/internal/game"
	"github.com/scythe504/skribbl-roomrt/internal/health"
	"github.com/scythe504/skribbl-roomrt/internal/httpapi"
)

func main() {
	cfg := config.Load()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connecting to database: %v", err)
		}
		pool = p
		defer pool.Close()
	}

	store := game.NewStore()
	registry := game.NewRegistry()
	engine := game.NewEngine(store, registry)
	checker := health.NewChecker(pool)

	api := httpapi.NewServer(store, engine, checker)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.RegisterRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
