package trade

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/utils"
)

// TradeService представляет сервис для работы с обменами и предложениями
type TradeService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(cfg *config.Config) *TradeService {
	return &TradeService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetTrades возвращает обмены текущего пользователя с опциональным фильтром по статусу
func (s *TradeService) GetTrades(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	statusFilter := c.Query("status")

	query := tradeSelect + ` WHERE (t.user1_id = $1 OR t.user2_id = $1)`
	args := []any{userID}

	if statusFilter != "" {
		query += ` AND t.status = $2`
		args = append(args, statusFilter)
	}

	query += ` ORDER BY t.start_date DESC`

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, queryErr := db.Pool.Query(ctx, query, args...)
	if queryErr != nil {
		log.Printf("Ошибка запроса обменов: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обменов"})
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			log.Printf("Ошибка сканирования обмена: %v", err)
			continue
		}

		trade.User1 = getUserInfo(ctx, trade.User1ID)
		trade.User2 = getUserInfo(ctx, trade.User2ID)
		trades = append(trades, *trade)
	}

	return c.JSON(fiber.Map{
		"trades": trades,
		"count":  len(trades),
	})
}

// GetTrade возвращает детальную информацию об обмене
func (s *TradeService) GetTrade(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	tradeUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := scanTrade(db.Pool.QueryRow(ctx, tradeSelect+` WHERE t.id = $1`, tradeUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Обмен не найден"})
		}
		log.Printf("Ошибка получения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обмена"})
	}

	// Обмен виден только его участникам
	if !trade.IsParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому обмену"})
	}

	trade.User1 = getUserInfo(ctx, trade.User1ID)
	trade.User2 = getUserInfo(ctx, trade.User2ID)

	return c.JSON(fiber.Map{"trade": trade})
}

// UpdateTradeStatus меняет статус обмена одним из его участников.
// Завершение обмена фиксирует фактическую дату завершения.
func (s *TradeService) UpdateTradeStatus(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	tradeUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Status string `json:"status"`
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

	// Блокируем строку обмена на время проверки перехода
	var trade models.Trade
	err = tx.QueryRow(ctx, `
		SELECT id, user1_id, user2_id, status FROM trades WHERE id = $1 FOR UPDATE
	`, tradeUUID).Scan(&trade.ID, &trade.User1ID, &trade.User2ID, &trade.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Обмен не найден"})
		}
		log.Printf("Ошибка запроса обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обмена"})
	}

	if !trade.IsParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому обмену"})
	}

	if !models.CanTransitionTrade(trade.Status, requestData.Status) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Недопустимый переход статуса обмена"})
	}

	if requestData.Status == models.TradeStatusCompleted {
		_, err = tx.Exec(ctx, `
			UPDATE trades SET status = $1, actual_completion_date = NOW() WHERE id = $2
		`, requestData.Status, tradeUUID)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE trades SET status = $1 WHERE id = $2
		`, requestData.Status, tradeUUID)
	}

	if err != nil {
		log.Printf("Ошибка обновления обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления обмена"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"trade_id": tradeUUID,
		"status":   requestData.Status,
	})
}

// UpdateTrade обновляет условия обмена: договоренности и ожидаемую дату завершения
func (s *TradeService) UpdateTrade(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	tradeUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		TermsAgreed            *string    `json:"terms_agreed"`
		ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	trade, err := scanTrade(db.Pool.QueryRow(ctx, tradeSelect+` WHERE t.id = $1`, tradeUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Обмен не найден"})
		}
		log.Printf("Ошибка запроса обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обмена"})
	}

	if !trade.IsParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому обмену"})
	}

	// Условия можно менять только в незавершенном обмене
	if models.IsTerminalTradeStatus(trade.Status) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Обмен уже завершен"})
	}

	if requestData.TermsAgreed != nil {
		trade.TermsAgreed = *requestData.TermsAgreed
	}
	if requestData.ExpectedCompletionDate != nil {
		trade.ExpectedCompletionDate = requestData.ExpectedCompletionDate
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE trades SET terms_agreed = $1, expected_completion_date = $2 WHERE id = $3
	`, trade.TermsAgreed, trade.ExpectedCompletionDate, tradeUUID)

	if err != nil {
		log.Printf("Ошибка обновления обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления обмена"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"trade_id": tradeUUID,
		"message":  "Условия обмена обновлены",
	})
}

const tradeSelect = `
	SELECT t.id, t.proposal_id, t.user1_id, t.user2_id, t.skill1_id, t.skill2_id,
	       t.status, t.start_date, t.expected_completion_date, t.actual_completion_date,
	       COALESCE(t.terms_agreed, '')
	FROM trades t`

func scanTrade(row pgx.Row) (*models.Trade, error) {
	var trade models.Trade
	err := row.Scan(
		&trade.ID,
		&trade.ProposalID,
		&trade.User1ID,
		&trade.User2ID,
		&trade.Skill1ID,
		&trade.Skill2ID,
		&trade.Status,
		&trade.StartDate,
		&trade.ExpectedCompletionDate,
		&trade.ActualCompletionDate,
		&trade.TermsAgreed,
	)
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// getUserInfo получает базовую информацию о пользователе
func getUserInfo(ctx context.Context, userID uuid.UUID) *models.User {
	var user models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(bio, ''), COALESCE(location, ''), COALESCE(profile_picture_url, ''), rating, num_reviews
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Bio,
		&user.Location,
		&user.ProfilePictureURL,
		&user.Rating,
		&user.NumReviews,
	)

	if err != nil {
		log.Printf("Ошибка получения данных пользователя %s: %v", userID, err)
		return nil
	}

	return &user
}
