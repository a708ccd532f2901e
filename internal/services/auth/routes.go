package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/register", s.RegisterHandler)
	app.Post("/api/auth/login", s.LoginHandler)

	// Защищенный маршрут профиля
	app.Get("/api/profile", s.ProfileHandler, middleware.AuthMiddleware(s.jwtService))
}
