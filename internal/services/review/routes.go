package review

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API отзывов.
// Отзывы видны всем, изменения доступны только авторизованным пользователям.
func (s *ReviewService) SetupRoutes(app *fiber.App) {
	app.Get("/api/reviews", s.GetReviews)
	app.Get("/api/reviews/:id", s.GetReview)

	auth := middleware.AuthMiddleware(s.jwtService)
	app.Post("/api/reviews", s.CreateReview, auth)
	app.Put("/api/reviews/:id", s.UpdateReview, auth)
	app.Delete("/api/reviews/:id", s.DeleteReview, auth)
}
