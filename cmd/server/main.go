package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/tcg-catalog/internal/api"
	"github.com/codyseavey/tcg-catalog/internal/catalog"
	"github.com/codyseavey/tcg-catalog/internal/config"
	"github.com/codyseavey/tcg-catalog/internal/database"
	"github.com/codyseavey/tcg-catalog/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	engine, err := catalog.NewEngine(cfg.QueryCacheSize)
	if err != nil {
		log.Fatalf("Failed to create catalog engine: %v", err)
	}

	priceService := services.NewPriceService(database.GetDB())
	priceWorker := services.NewPriceWorker(priceService, engine, cfg.PriceRefreshInterval)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The catalog may need downloading first; the API answers 503 until it is ready
	loader := services.NewCatalogLoader(cfg.DataDir, cfg.CatalogFile, cfg.DownloadCatalog)
	go func() {
		payload, err := loader.Load(ctx)
		if err != nil {
			log.Printf("ERROR: Failed to load catalog: %v", err)
			return
		}
		cat, err := engine.LoadCatalog(payload)
		if err != nil {
			log.Printf("ERROR: Failed to activate catalog: %v", err)
			return
		}
		log.Printf("Loaded %d Pokemon cards from %d sets (snapshot %s)", cat.Len(), cat.Lookups.Sets.Len(), cat.ID)
	}()

	// Start price worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in price worker: %v - restarting in 30 seconds", r)
					}
				}()
				priceWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Price worker restarting after panic recovery...")
			}
		}
	}()

	router := api.SetupRouter(cfg, engine, priceWorker, priceService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the price worker and any catalog download
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
