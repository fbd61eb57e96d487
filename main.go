package main

import (
	"context"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/salesinsight/backend/src/config"
	"github.com/username/salesinsight/backend/src/database"
	"github.com/username/salesinsight/backend/src/handlers"
	"github.com/username/salesinsight/backend/src/logger"
	"github.com/username/salesinsight/backend/src/processors"
	"github.com/username/salesinsight/backend/src/security"
	"github.com/username/salesinsight/backend/src/services"
	"github.com/username/salesinsight/backend/src/storage"
	"golang.org/x/time/rate"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Sales insight backend server starting...")

	if len(config.Cfg.SessionSecret) < 32 {
		logger.L.Error("SESSION_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	if err := storage.NewFileStore(config.Cfg.UploadFolder).EnsureDir(); err != nil {
		logger.L.Error("Failed to prepare upload folder", "folder", config.Cfg.UploadFolder, "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	db, err := database.InitDB(config.Cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	reportOptions := processors.DefaultReportOptions()
	reportOptions.TopN = config.Cfg.DefaultTopN
	reportOptions.RegionTopN = config.Cfg.RegionTopN
	reportOptions.ShareThreshold = config.Cfg.RegionShareThreshold

	analyticsService := services.NewAnalyticsService(config.Cfg.UploadFolder, reportCache, reportOptions)
	ingestionService := services.NewIngestionService(services.IngestionOptions{
		UploadFolder: config.Cfg.UploadFolder,
		FilePrefix:   config.Cfg.StandardizedPrefix,
	}, db, analyticsService)

	sessions := security.NewSessionService(config.Cfg.SessionSecret, config.Cfg.SessionExpiry).
		WithSecureCookies(config.Cfg.CookieSecure)
	uploadHandler := handlers.NewUploadHandler(ingestionService, sessions, config.Cfg.UploadFolder, db, config.Cfg.MaxUploadSizeBytes)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, sessions, handlers.AnalyticsDefaults{
		TopN:           config.Cfg.DefaultTopN,
		RegionTopN:     config.Cfg.RegionTopN,
		ShareThreshold: config.Cfg.RegionShareThreshold,
	})

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()
	handlers.RegisterRoutes(apiRouter, uploadHandler, analyticsHandler)
	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Sales insight backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	limiter := rate.NewLimiter(rate.Every(config.Cfg.RateLimitInterval), config.Cfg.RateLimitBurst)
	finalHandler := handlers.CORSMiddleware(config.Cfg.AllowedOrigins)(
		handlers.RateLimitMiddleware(limiter)(
			handlers.RequestIDMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.L.Info("Shutdown signal received, draining connections...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.L.Error("Graceful shutdown failed", "error", err)
		}
	}()

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
