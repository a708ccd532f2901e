package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/middleware"
	"github.com/skillswap/skillswap-api/internal/services/auth"
	"github.com/skillswap/skillswap-api/internal/services/block"
	"github.com/skillswap/skillswap-api/internal/services/cloudinary"
	"github.com/skillswap/skillswap-api/internal/services/listing"
	"github.com/skillswap/skillswap-api/internal/services/message"
	"github.com/skillswap/skillswap-api/internal/services/review"
	"github.com/skillswap/skillswap-api/internal/services/skill"
	"github.com/skillswap/skillswap-api/internal/services/trade"
	"github.com/skillswap/skillswap-api/internal/services/userskill"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SkillSwap API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)
	skillService := skill.NewSkillService(cfg)
	userSkillService := userskill.NewUserSkillService(cfg)
	listingService := listing.NewListingService(cfg, cloudinaryService)
	tradeService := trade.NewTradeService(cfg)
	messageService := message.NewMessageService(cfg)
	reviewService := review.NewReviewService(cfg)
	blockService := block.NewBlockService(cfg)

	// Настраиваем middleware для аутентификации
	authMiddleware := middleware.AuthMiddleware(authService.GetJWTService())

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app, authMiddleware)
	skillService.SetupRoutes(app)
	userSkillService.SetupRoutes(app)
	listingService.SetupRoutes(app)
	tradeService.SetupRoutes(app)
	messageService.SetupRoutes(app)
	reviewService.SetupRoutes(app)
	blockService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ SkillSwap API запущен на %s", cfg.ServerAddr)
	log.Fatal(app.Listen(cfg.ServerAddr))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
