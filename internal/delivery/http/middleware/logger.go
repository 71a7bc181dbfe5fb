package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/perception-map/internal/pkg/metrics"
)

// Logger - middleware для логирования запросов и метрик HTTP
func Logger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// ErrorHandler выставит итоговый статус позже, здесь считаем по ошибке
			if ferr := c.App().Config().ErrorHandler(c, err); ferr != nil {
				logger.Error("Failed to handle error", zap.Error(ferr))
			}
			err = nil
		}

		status := c.Response().StatusCode()
		duration := time.Since(start)
		route := c.Route().Path
		metrics.RecordHTTPRequest(c.Method(), route, strconv.Itoa(status), duration)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Debug("HTTP request", fields...)
		}
		return err
	}
}
