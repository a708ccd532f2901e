package message

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API сообщений
func (s *MessageService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/messages")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.SendMessage)
	api.Get("/", s.GetMessages)

	// Сводки переписок и переписка с конкретным собеседником
	api.Get("/conversations", s.GetConversations)
	api.Get("/conversation/:user_id", s.GetConversation)

	api.Get("/:id", s.GetMessage)
	api.Put("/:id", s.UpdateMessage)
	api.Delete("/:id", s.DeleteMessage)
}
