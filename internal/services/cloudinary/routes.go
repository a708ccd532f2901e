package cloudinary

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для получения параметров загрузки
func (s *CloudinaryService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/upload")
	api.Use(authMiddleware)

	// Маршрут для получения подписанных параметров загрузки
	api.Get("/params", s.GenerateUploadParams)
}
