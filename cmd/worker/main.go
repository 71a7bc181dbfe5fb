package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/perception-map/internal/config"
	"github.com/perception-map/internal/infrastructure/backend"
	"github.com/perception-map/internal/overlay"
	"github.com/perception-map/internal/pkg/logger"
	"github.com/perception-map/internal/repository/cache"
	redisRepo "github.com/perception-map/internal/repository/redis"
	"github.com/perception-map/internal/usecase"
	"github.com/perception-map/internal/worker"
	"github.com/perception-map/internal/worker/prerender"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, zap.String("service", "perception-map-worker"))
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting map prerender worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Duration("idle_pause", cfg.Worker.StreamReadTimeout),
		zap.String("backend", cfg.Backend.BaseURL))

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

	// 4. Initialize repositories
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	cellSource := backend.NewClient(&cfg.Backend, log)

	// 5. Initialize use case; журнал отрисовки воркеру не нужен
	renderer := overlay.DefaultConfig()
	renderer.CellEdge = cfg.Map.CellEdge
	mapUC := usecase.NewMapUseCase(cellSource, cacheRepo, nil, usecase.MapConfig{
		Years:         cfg.Map.Years,
		CellsCacheTTL: cfg.Cache.CellsCacheTTL,
		Renderer:      renderer,
	}, log)

	// 6. Initialize workers
	prerenderWorker := prerender.NewWorker(
		streamRepo,
		mapUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.MaxRetries,
		log,
	).WithIdlePause(cfg.Worker.StreamReadTimeout)

	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(prerenderWorker)

	// 7. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
