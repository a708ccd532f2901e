package block

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/utils"
)

// BlockService представляет сервис для работы с блокировками пользователей
type BlockService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewBlockService создает новый экземпляр BlockService
func NewBlockService(cfg *config.Config) *BlockService {
	return &BlockService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetBlocks возвращает список блокировок текущего пользователя
func (s *BlockService) GetBlocks(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, queryErr := db.Pool.Query(ctx, `
		SELECT b.id, b.blocker_id, b.blocked_id, COALESCE(b.reason, ''), b.block_date,
		       u.id, u.username, COALESCE(u.bio, ''), COALESCE(u.location, ''), COALESCE(u.profile_picture_url, ''), u.rating, u.num_reviews
		FROM user_blocks b
		JOIN users u ON u.id = b.blocked_id
		WHERE b.blocker_id = $1
		ORDER BY b.block_date DESC
	`, userID)

	if queryErr != nil {
		log.Printf("Ошибка запроса блокировок: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения блокировок"})
	}
	defer rows.Close()

	var blocks []models.UserBlock
	for rows.Next() {
		var block models.UserBlock
		var blocked models.User

		err := rows.Scan(
			&block.ID,
			&block.BlockerID,
			&block.BlockedID,
			&block.Reason,
			&block.BlockDate,
			&blocked.ID,
			&blocked.Username,
			&blocked.Bio,
			&blocked.Location,
			&blocked.ProfilePictureURL,
			&blocked.Rating,
			&blocked.NumReviews,
		)
		if err != nil {
			log.Printf("Ошибка сканирования блокировки: %v", err)
			continue
		}

		block.Blocked = &blocked
		blocks = append(blocks, block)
	}

	return c.JSON(fiber.Map{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// CreateBlock блокирует пользователя
func (s *BlockService) CreateBlock(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		BlockedUserID string `json:"blocked_user_id"`
		Reason        string `json:"reason"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	blockedID, err := uuid.Parse(requestData.BlockedUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID блокируемого пользователя"})
	}

	// Нельзя заблокировать самого себя
	if blockedID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя заблокировать самого себя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	exists, err := db.UserExists(ctx, blockedID)
	if err != nil {
		log.Printf("Ошибка проверки пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	blockID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO user_blocks (id, blocker_id, blocked_id, reason)
		VALUES ($1, $2, $3, $4)
	`, blockID, userID, blockedID, requestData.Reason)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Пользователь уже заблокирован"})
		}
		log.Printf("Ошибка вставки блокировки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания блокировки"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"block_id": blockID,
		"message":  "Пользователь заблокирован",
	})
}

// GetBlock возвращает информацию о блокировке
func (s *BlockService) GetBlock(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	blockUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID блокировки"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var block models.UserBlock
	err = db.Pool.QueryRow(ctx, `
		SELECT id, blocker_id, blocked_id, COALESCE(reason, ''), block_date
		FROM user_blocks
		WHERE id = $1
	`, blockUUID).Scan(&block.ID, &block.BlockerID, &block.BlockedID, &block.Reason, &block.BlockDate)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Блокировка не найдена"})
		}
		log.Printf("Ошибка запроса блокировки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения блокировки"})
	}

	// Блокировка видна только ее создателю
	if block.BlockerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этой блокировке"})
	}

	return c.JSON(fiber.Map{"block": block})
}

// DeleteBlock снимает блокировку
func (s *BlockService) DeleteBlock(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	blockUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID блокировки"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var blockerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT blocker_id FROM user_blocks WHERE id = $1", blockUUID).Scan(&blockerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Блокировка не найдена"})
		}
		log.Printf("Ошибка запроса блокировки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения блокировки"})
	}

	if blockerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только создатель блокировки может ее снять"})
	}

	_, err = db.Pool.Exec(ctx, "DELETE FROM user_blocks WHERE id = $1", blockUUID)
	if err != nil {
		log.Printf("Ошибка удаления блокировки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления блокировки"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Блокировка снята",
	})
}

// IsBlockedPair сообщает, заблокировал ли один из пользователей другого.
// Блокировка в любую сторону запрещает обмен сообщениями.
func IsBlockedPair(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var blocked bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`, userA, userB).Scan(&blocked)
	return blocked, err
}
