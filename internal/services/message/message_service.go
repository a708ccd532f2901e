package message

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/services/block"
	"github.com/skillswap/skillswap-api/internal/utils"
)

// MessageService представляет сервис для работы с личными сообщениями
type MessageService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewMessageService создает новый экземпляр MessageService
func NewMessageService(cfg *config.Config) *MessageService {
	return &MessageService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// SendMessage отправляет личное сообщение.
// Блокировка в любую сторону между отправителем и получателем запрещает отправку.
func (s *MessageService) SendMessage(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	senderID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		ReceiverID  string `json:"receiver_id"`
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
		TradeID     string `json:"trade_id"`
		ProposalID  string `json:"proposal_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	receiverID, err := uuid.Parse(requestData.ReceiverID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID получателя"})
	}

	if requestData.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст сообщения обязателен"})
	}

	if requestData.MessageType == "" {
		requestData.MessageType = models.MessageTypeText
	}
	if !models.IsValidMessageType(requestData.MessageType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый тип сообщения"})
	}

	// Необязательные привязки к обмену или предложению
	var tradeID, proposalID *uuid.UUID
	if requestData.TradeID != "" {
		id, err := uuid.Parse(requestData.TradeID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
		}
		tradeID = &id
	}
	if requestData.ProposalID != "" {
		id, err := uuid.Parse(requestData.ProposalID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
		}
		proposalID = &id
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	exists, err := db.UserExists(ctx, receiverID)
	if err != nil {
		log.Printf("Ошибка проверки получателя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Получатель не найден"})
	}

	blocked, err := block.IsBlockedPair(ctx, senderID, receiverID)
	if err != nil {
		log.Printf("Ошибка проверки блокировок: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if blocked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Обмен сообщениями с этим пользователем недоступен"})
	}

	messageID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, trade_id, proposal_id, content, message_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, messageID, senderID, receiverID, tradeID, proposalID, requestData.Content, requestData.MessageType)

	if err != nil {
		log.Printf("Ошибка вставки сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка отправки сообщения"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message_id": messageID,
	})
}

// GetMessages возвращает все сообщения текущего пользователя по возрастанию времени
func (s *MessageService) GetMessages(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	messages, err := loadUserMessages(ctx, userID)
	if err != nil {
		log.Printf("Ошибка запроса сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщений"})
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// GetMessage возвращает одно сообщение. Доступно отправителю и получателю.
func (s *MessageService) GetMessage(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	messageUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID сообщения"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := scanMessage(db.Pool.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, messageUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Сообщение не найдено"})
		}
		log.Printf("Ошибка получения сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщения"})
	}

	if msg.SenderID != userID && msg.ReceiverID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому сообщению"})
	}

	return c.JSON(fiber.Map{"message": msg})
}

// UpdateMessage редактирует текст сообщения. Доступно только отправителю.
func (s *MessageService) UpdateMessage(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	messageUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID сообщения"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Content string `json:"content"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Текст сообщения обязателен"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var senderID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT sender_id FROM messages WHERE id = $1", messageUUID).Scan(&senderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Сообщение не найдено"})
		}
		log.Printf("Ошибка запроса сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщения"})
	}

	if senderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только отправитель может редактировать сообщение"})
	}

	_, err = db.Pool.Exec(ctx, "UPDATE messages SET content = $1 WHERE id = $2", requestData.Content, messageUUID)
	if err != nil {
		log.Printf("Ошибка обновления сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления сообщения"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message_id": messageUUID,
	})
}

// DeleteMessage удаляет сообщение. Доступно только отправителю.
func (s *MessageService) DeleteMessage(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	messageUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID сообщения"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var senderID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT sender_id FROM messages WHERE id = $1", messageUUID).Scan(&senderID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Сообщение не найдено"})
		}
		log.Printf("Ошибка запроса сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщения"})
	}

	if senderID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только отправитель может удалить сообщение"})
	}

	_, err = db.Pool.Exec(ctx, "DELETE FROM messages WHERE id = $1", messageUUID)
	if err != nil {
		log.Printf("Ошибка удаления сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления сообщения"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Сообщение удалено",
	})
}

// GetConversation возвращает переписку с конкретным пользователем по возрастанию
// времени и помечает входящие непрочитанные сообщения прочитанными.
func (s *MessageService) GetConversation(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	otherUUID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID собеседника"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Чтение переписки и отметка о прочтении выполняются атомарно
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	rows, queryErr := tx.Query(ctx, messageSelect+`
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.timestamp ASC
	`, userID, otherUUID)

	if queryErr != nil {
		log.Printf("Ошибка запроса переписки: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения переписки"})
	}

	messages, err := collectMessages(rows)
	if err != nil {
		log.Printf("Ошибка чтения переписки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения переписки"})
	}

	// Открытие переписки помечает входящие сообщения прочитанными
	_, err = tx.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE
	`, userID, otherUUID)
	if err != nil {
		log.Printf("Ошибка отметки сообщений прочитанными: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления сообщений"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// GetConversations возвращает сводки переписок пользователя: по одному
// собеседнику с последним сообщением и числом непрочитанных
func (s *MessageService) GetConversations(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	messages, err := loadUserMessages(ctx, userID)
	if err != nil {
		log.Printf("Ошибка запроса сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения переписок"})
	}

	conversations := models.BuildConversations(userID, messages)

	// Дополняем сводки данными собеседников
	for i := range conversations {
		conversations[i].OtherUser = getUserInfo(ctx, conversations[i].OtherUserID)
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

const messageSelect = `
	SELECT m.id, m.sender_id, m.receiver_id, m.trade_id, m.proposal_id,
	       m.content, m.timestamp, m.is_read, m.message_type
	FROM messages m`

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.TradeID,
		&msg.ProposalID,
		&msg.Content,
		&msg.Timestamp,
		&msg.IsRead,
		&msg.MessageType,
	)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}

	return messages, rows.Err()
}

func loadUserMessages(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	rows, err := db.Pool.Query(ctx, messageSelect+`
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.timestamp ASC
	`, userID)
	if err != nil {
		return nil, err
	}

	return collectMessages(rows)
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
