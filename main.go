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

	"github.com/auric/jewelry-be/internal/api"
	"github.com/auric/jewelry-be/internal/auth"
	"github.com/auric/jewelry-be/internal/config"
	"github.com/auric/jewelry-be/internal/database"
	"github.com/auric/jewelry-be/internal/logger"
	"github.com/auric/jewelry-be/internal/monitoring"
	"github.com/auric/jewelry-be/internal/services"
	"github.com/auric/jewelry-be/internal/uploads"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Upload directories are created once here, never per request
	files := uploads.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err := files.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create upload directories: %v", err)
	}

	// Token signing state is fixed for the lifetime of the process
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	// Set up services
	userService := services.NewUserService(db, cfg.BcryptCost)
	productService := services.NewProductService(db, files)
	designService := services.NewDesignService(db)

	if err := userService.EnsureAdmin(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	authMW := auth.NewMiddleware(tokens, userService)

	// Set up and run the background orphan-upload sweeper
	sweeper, err := monitoring.NewSweeper(db, files, cfg.SweepSchedule)
	if err != nil {
		log.Fatalf("Invalid sweep schedule: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(cfg, authMW, tokens, files, userService, productService, designService)

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

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
