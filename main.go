package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/api"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/auth"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/config"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/database"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/logger"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/monitoring"
	"github.com/Rouzbeh99/Tweeter-like-application/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; env vars win either way.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up services
	userService := services.NewUserService(db)
	tweetService := services.NewTweetService(db)
	issuer := auth.NewTokenIssuer(cfg.TokenSecret)

	// Set up and run the background usage snapshot updater
	snapshotUpdater, err := monitoring.NewSnapshotUpdater(db, cfg.SnapshotSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot updater: %v", err)
	}
	go snapshotUpdater.Run()

	// Set up router
	router := api.NewRouter(userService, tweetService, issuer, cfg.CORSOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	snapshotUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
