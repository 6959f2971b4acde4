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
	"github.com/nageshcare/nageshcare-api/config"
	"github.com/nageshcare/nageshcare-api/logging"
	"github.com/nageshcare/nageshcare-api/metrics"
	"github.com/nageshcare/nageshcare-api/services"
)

func main() {
	log.Println("Starting NageshCare API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := config.GetDB()
	if err := config.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := services.NewFileStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Store:  store,
		Mailer: services.NewGomailMailer(),
	}
	if cfg.StaffAuthEnabled() {
		app.Profiles = services.NewAuth0Service(cfg)
	}

	router, err := NewRouter(app)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					metrics.UpdateDBConnections(sqlDB.Stats())
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
