package block

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API блокировок
func (s *BlockService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/blocks")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetBlocks)
	api.Post("/", s.CreateBlock)
	api.Get("/:id", s.GetBlock)
	api.Delete("/:id", s.DeleteBlock)
}
