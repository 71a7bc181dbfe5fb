package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/perception-map/internal/config"
	"github.com/perception-map/internal/delivery/http/handler"
	"github.com/perception-map/internal/delivery/http/middleware"
	"github.com/perception-map/internal/pkg/errors"
	"github.com/perception-map/internal/pkg/utils"
)

// HealthCheck проверяет одну зависимость сервиса
type HealthCheck func(ctx context.Context) error

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger
	checks map[string]HealthCheck

	// Handlers
	mapHandler     *handler.MapHandler
	sessionHandler *handler.SessionHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mapHandler *handler.MapHandler,
	sessionHandler *handler.SessionHandler,
	checks map[string]HealthCheck,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Perception Map",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		checks:         checks,
		mapHandler:     mapHandler,
		sessionHandler: sessionHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - доступ к fiber.App для тестов
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Prometheus
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.health)

	// Map routes
	api.Get("/map/years", s.mapHandler.GetYears)
	api.Get("/map/reports", s.mapHandler.GetReports)
	api.Get("/map/:year/overlay", s.mapHandler.GetOverlay)

	// Session routes
	sessions := api.Group("/sessions")
	sessions.Post("/", s.sessionHandler.Create)
	sessions.Get("/:id", s.sessionHandler.Get)
	sessions.Delete("/:id", s.sessionHandler.Delete)
	sessions.Put("/:id/year", s.sessionHandler.SelectYear)
	sessions.Put("/:id/view-mode", s.sessionHandler.SetViewMode)
	sessions.Get("/:id/shapes/:shape/hover", s.sessionHandler.Hover)
	sessions.Delete("/:id/shapes/:shape/hover", s.sessionHandler.Leave)
	sessions.Post("/:id/shapes/:shape/click", s.sessionHandler.Click)
	sessions.Get("/:id/detail", s.sessionHandler.GetDetail)
	sessions.Post("/:id/detail/next", s.sessionHandler.NextEvaluation)
	sessions.Post("/:id/detail/previous", s.sessionHandler.PreviousEvaluation)
	sessions.Delete("/:id/detail", s.sessionHandler.CloseDetail)
}

// health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"dependencies": deps,
		"time":         time.Now(),
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return utils.SendError(c, appErr)
		}

		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			code = fe.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		appErr = errors.ErrInternalServer
		if code != fiber.StatusInternalServerError {
			appErr = errors.New("HTTP_ERROR", err.Error(), code)
		}
		return c.Status(code).JSON(utils.ErrorResponse{Error: appErr})
	}
}
