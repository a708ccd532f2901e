package userskill

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/utils"
)

// UserSkillService представляет сервис для работы с навыками пользователей
type UserSkillService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewUserSkillService создает новый экземпляр UserSkillService
func NewUserSkillService(cfg *config.Config) *UserSkillService {
	return &UserSkillService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// AddSkills принимает пакет offerings/desires и выполняет upsert для каждого
// элемента. Навык находится по точному имени и создается при отсутствии.
// Элементы без имени навыка молча пропускаются.
func (s *UserSkillService) AddSkills(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Offerings []models.SkillInput `json:"offerings"`
		Desires   []models.SkillInput `json:"desires"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	var saved []models.UserSkill

	upsertBatch := func(items []models.SkillInput, skillType string) error {
		for _, item := range items {
			name := strings.TrimSpace(item.SkillName)
			if name == "" {
				// Элемент без имени навыка пропускаем
				continue
			}

			skillID, err := getOrCreateSkill(ctx, tx, name, item.Category, item.Description)
			if err != nil {
				return err
			}

			userSkill := models.UserSkill{
				UserID:           userUUID,
				SkillID:          skillID,
				SkillName:        name,
				SkillType:        skillType,
				ProficiencyLevel: item.ProficiencyLevel,
				Details:          item.Details,
			}

			// Upsert по (user_id, skill_id, skill_type): повторная отправка
			// перезаписывает уровень и детали, не создавая второй строки
			err = tx.QueryRow(ctx, `
				INSERT INTO user_skills (id, user_id, skill_id, skill_type, proficiency_level, details)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (user_id, skill_id, skill_type)
				DO UPDATE SET proficiency_level = EXCLUDED.proficiency_level, details = EXCLUDED.details
				RETURNING id
			`, uuid.New(), userUUID, skillID, skillType, item.ProficiencyLevel, item.Details).Scan(&userSkill.ID)

			if err != nil {
				return err
			}

			saved = append(saved, userSkill)
		}
		return nil
	}

	if err := upsertBatch(requestData.Offerings, models.SkillTypeOffering); err != nil {
		log.Printf("Ошибка сохранения предлагаемых навыков: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения навыков"})
	}

	if err := upsertBatch(requestData.Desires, models.SkillTypeDesiring); err != nil {
		log.Printf("Ошибка сохранения желаемых навыков: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения навыков"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Навыки успешно сохранены",
		"count":   len(saved),
		"skills":  saved,
	})
}

// GetUserSkills возвращает публичный список навыков пользователя,
// разделенный на offerings и desires
func (s *UserSkillService) GetUserSkills(c fiber.Ctx) error {
	targetUUID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	exists, err := db.UserExists(ctx, targetUUID)
	if err != nil {
		log.Printf("Ошибка проверки пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки пользователя"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT us.id, us.user_id, us.skill_id, sk.skill_name, us.skill_type,
		       COALESCE(us.proficiency_level, ''), COALESCE(us.details, '')
		FROM user_skills us
		JOIN skills sk ON sk.id = us.skill_id
		WHERE us.user_id = $1
		ORDER BY sk.skill_name ASC
	`, targetUUID)

	if err != nil {
		log.Printf("Ошибка запроса навыков пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения навыков"})
	}
	defer rows.Close()

	offerings := []models.UserSkill{}
	desires := []models.UserSkill{}

	for rows.Next() {
		var us models.UserSkill
		if err := rows.Scan(&us.ID, &us.UserID, &us.SkillID, &us.SkillName, &us.SkillType,
			&us.ProficiencyLevel, &us.Details); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		if us.SkillType == models.SkillTypeOffering {
			offerings = append(offerings, us)
		} else {
			desires = append(desires, us)
		}
	}

	return c.JSON(fiber.Map{
		"user_id":   targetUUID,
		"offerings": offerings,
		"desires":   desires,
	})
}

// getOrCreateSkill находит навык по точному имени или создает его
func getOrCreateSkill(ctx context.Context, tx pgx.Tx, name, category, description string) (uuid.UUID, error) {
	var skillID uuid.UUID

	err := tx.QueryRow(ctx, `SELECT id FROM skills WHERE skill_name = $1`, name).Scan(&skillID)
	if err == nil {
		return skillID, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, err
	}

	if category == "" {
		category = "General"
	}

	skillID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO skills (id, skill_name, category, description)
		VALUES ($1, $2, $3, $4)
	`, skillID, name, category, description)
	if err != nil {
		return uuid.Nil, err
	}

	return skillID, nil
}
