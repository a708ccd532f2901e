package skill

import (
	"context"
	"encoding/json"
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

// SkillService представляет сервис для работы с каталогом навыков
type SkillService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewSkillService создает новый экземпляр SkillService
func NewSkillService(cfg *config.Config) *SkillService {
	return &SkillService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetSkills возвращает весь каталог навыков
func (s *SkillService) GetSkills(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, skill_name, category, COALESCE(description, '')
		FROM skills
		ORDER BY skill_name ASC
	`)
	if err != nil {
		log.Printf("Ошибка запроса навыков: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения навыков"})
	}
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		var skill models.Skill
		if err := rows.Scan(&skill.ID, &skill.SkillName, &skill.Category, &skill.Description); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		skills = append(skills, skill)
	}

	return c.JSON(fiber.Map{
		"skills": skills,
		"count":  len(skills),
	})
}

// GetSkill возвращает один навык по ID
func (s *SkillService) GetSkill(c fiber.Ctx) error {
	skillUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID навыка"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var skill models.Skill
	err = db.Pool.QueryRow(ctx, `
		SELECT id, skill_name, category, COALESCE(description, '')
		FROM skills
		WHERE id = $1
	`, skillUUID).Scan(&skill.ID, &skill.SkillName, &skill.Category, &skill.Description)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Навык не найден"})
		}
		log.Printf("Ошибка получения навыка: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения навыка"})
	}

	return c.JSON(skill)
}

// CreateSkills создает один или несколько навыков. Тело запроса может быть
// как одним объектом, так и списком. Существующие имена (без учета регистра)
// и плейсхолдер "other" пропускаются без ошибки.
func (s *SkillService) CreateSkills(c fiber.Ctx) error {
	body := c.Body()

	// Принимаем либо список, либо один объект
	var candidates []models.SkillInput
	if err := json.Unmarshal(body, &candidates); err != nil {
		var single models.SkillInput
		if err := json.Unmarshal(body, &single); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
		}
		candidates = []models.SkillInput{single}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	existing, err := loadExistingNames(ctx)
	if err != nil {
		log.Printf("Ошибка запроса существующих навыков: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки навыков"})
	}

	toCreate := models.FilterCreatableSkills(candidates, existing)
	if len(toCreate) == 0 {
		// Все навыки уже существуют — это не ошибка
		return c.JSON(fiber.Map{
			"detail": "Все навыки уже существуют, ничего не создано",
			"skills": []models.Skill{},
		})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	var created []models.Skill
	for _, item := range toCreate {
		category := item.Category
		if category == "" {
			category = "General"
		}

		skill := models.Skill{
			ID:          uuid.New(),
			SkillName:   item.SkillName,
			Category:    category,
			Description: item.Description,
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO skills (id, skill_name, category, description)
			VALUES ($1, $2, $3, $4)
		`, skill.ID, skill.SkillName, skill.Category, skill.Description)

		if err != nil {
			if db.IsUniqueViolation(err) {
				// Параллельный запрос успел создать навык первым
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Навык с таким именем уже существует"})
			}
			log.Printf("Ошибка создания навыка: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения навыка"})
		}

		created = append(created, skill)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"skills": created,
		"count":  len(created),
	})
}

// UpdateSkill обновляет существующий навык
func (s *SkillService) UpdateSkill(c fiber.Ctx) error {
	skillUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID навыка"})
	}

	var requestData struct {
		SkillName   string `json:"skill_name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	requestData.SkillName = strings.TrimSpace(requestData.SkillName)
	if requestData.SkillName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название навыка обязательно"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		UPDATE skills
		SET skill_name = $1, category = $2, description = $3
		WHERE id = $4
	`, requestData.SkillName, requestData.Category, requestData.Description, skillUUID)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Навык с таким именем уже существует"})
		}
		log.Printf("Ошибка обновления навыка: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления навыка"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Навык не найден"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"skill_id": skillUUID,
	})
}

// DeleteSkill удаляет навык из каталога
func (s *SkillService) DeleteSkill(c fiber.Ctx) error {
	skillUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID навыка"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `DELETE FROM skills WHERE id = $1`, skillUUID)
	if err != nil {
		log.Printf("Ошибка удаления навыка: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления навыка"})
	}

	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Навык не найден"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// loadExistingNames возвращает множество существующих имен навыков в нижнем регистре
func loadExistingNames(ctx context.Context) (map[string]bool, error) {
	rows, err := db.Pool.Query(ctx, `SELECT LOWER(skill_name) FROM skills`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		existing[name] = true
	}

	return existing, rows.Err()
}
