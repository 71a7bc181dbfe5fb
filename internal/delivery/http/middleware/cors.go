package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// DefaultCORSOrigins - dev-серверы фронтенда карты
const DefaultCORSOrigins = "http://localhost:3000,http://localhost:5173"

// CORS - middleware для настройки Cross-Origin Resource Sharing.
// Сессии карты меняются через PUT и DELETE, поэтому они разрешены явно.
func CORS(origins string) fiber.Handler {
	if origins == "" {
		origins = DefaultCORSOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Authorization",
		AllowCredentials: origins != "*",
	})
}
