package skill

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API каталога навыков.
// Чтение публичное, изменения требуют авторизации, поэтому middleware
// навешивается на конкретные маршруты, а не на весь префикс.
func (s *SkillService) SetupRoutes(app *fiber.App) {
	app.Get("/api/skills", s.GetSkills)
	app.Get("/api/skills/:id", s.GetSkill)

	auth := middleware.AuthMiddleware(s.jwtService)
	app.Post("/api/skills", s.CreateSkills, auth)
	app.Put("/api/skills/:id", s.UpdateSkill, auth)
	app.Delete("/api/skills/:id", s.DeleteSkill, auth)
}
