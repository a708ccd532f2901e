package trade

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов и предложений
func (s *TradeService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/trades")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Предложения обмена
	api.Post("/proposals", s.CreateProposal)
	api.Get("/proposals", s.GetProposals)
	api.Get("/proposals/:id", s.GetProposal)
	api.Put("/proposals/:id/status", s.UpdateProposalStatus)
	api.Delete("/proposals/:id", s.DeleteProposal)

	// Обмены
	api.Get("/", s.GetTrades)
	api.Get("/:id", s.GetTrade)
	api.Put("/:id", s.UpdateTrade)
	api.Put("/:id/status", s.UpdateTradeStatus)
}
