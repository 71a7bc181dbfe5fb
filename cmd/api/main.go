package main

// @title Perception Map API
// @version 1.0.0
// @description Сервис отрисовки карты городского восприятия: загружает оцененные ячейки за год, рисует их цветными прямоугольниками и показывает оценки выбранной ячейки.
// @description
// @description Основные возможности:
// @description - Сессии карты: выбор года, режим отображения, подсказки и клики по ячейкам
// @description - Просмотр оценок ячейки с переходом по кругу
// @description - Разовая отрисовка года в GeoJSON
// @description - Журнал итогов отрисовки

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/perception-map/docs/swagger"
	"github.com/perception-map/internal/config"
	httpDelivery "github.com/perception-map/internal/delivery/http"
	"github.com/perception-map/internal/delivery/http/handler"
	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/domain/repository"
	"github.com/perception-map/internal/infrastructure/backend"
	"github.com/perception-map/internal/overlay"
	"github.com/perception-map/internal/pkg/logger"
	"github.com/perception-map/internal/repository/cache"
	"github.com/perception-map/internal/repository/postgres"
	"github.com/perception-map/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, zap.String("service", "perception-map-api"))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Perception Map")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Ints("years", cfg.Map.Years),
	)

	checks := map[string]httpDelivery.HealthCheck{}

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()
	checks["redis"] = redisClient.Health
	log.Info("Redis connected")

	// 4. Connect to PostgreSQL (журнал отрисовки, необязателен)
	var reportRepo repository.ReportRepository
	if cfg.Database.Host != "" {
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(migrateCtx, cfg.Database.MigrationsPath)
		cancelMigrate()
		if err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		checks["postgres"] = db.Health
		reportRepo = postgres.NewReportRepository(db)
		log.Info("PostgreSQL connected, render journal enabled")
	} else {
		log.Info("DB_HOST not set, render journal disabled")
	}

	// 5. Initialize repositories
	cacheRepo := cache.NewCacheRepository(redisClient)
	cellSource := backend.NewClient(&cfg.Backend, log)

	log.Info("Repositories initialized")

	// 6. Initialize use cases
	mapUC := usecase.NewMapUseCase(cellSource, cacheRepo, reportRepo, usecase.MapConfig{
		Years:         cfg.Map.Years,
		CellsCacheTTL: cfg.Cache.CellsCacheTTL,
		Renderer: overlay.Config{
			DefaultView: domain.Viewport{
				Center: domain.Point{Lat: cfg.Map.DefaultLat, Lon: cfg.Map.DefaultLng},
				Zoom:   cfg.Map.DefaultZoom,
			},
			CellEdge:   cfg.Map.CellEdge,
			FitPadding: cfg.Map.FitPadding,
		},
	}, log)
	sessionUC := usecase.NewMapSessionUseCase(mapUC, cfg.Session.TTL, log)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go sessionUC.RunJanitor(janitorCtx, cfg.Session.CleanupInterval)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP handlers and server
	server := httpDelivery.NewServer(
		cfg,
		log,
		handler.NewMapHandler(mapUC, log),
		handler.NewSessionHandler(sessionUC, log),
		checks,
	)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	stopJanitor()
	if err := sessionUC.Shutdown(ctx); err != nil {
		log.Error("Map sessions shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
