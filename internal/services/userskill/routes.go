package userskill

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API навыков пользователей
func (s *UserSkillService) SetupRoutes(app *fiber.App) {
	// Публичный маршрут — навыки любого пользователя по ID
	app.Get("/api/user-skills/:user_id", s.GetUserSkills)

	// Пакетное сохранение своих навыков требует авторизации
	app.Post("/api/user-skills/add-skills", s.AddSkills, middleware.AuthMiddleware(s.jwtService))
}
