package trade

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
)

// CreateProposal создает предложение обмена по объявлению.
// Получателем всегда становится владелец объявления, навыки по умолчанию
// берутся из пары навыков объявления.
func (s *TradeService) CreateProposal(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	proposerID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		ListingID              string `json:"listing_id"`
		SkillOfferedByProposer string `json:"skill_offered_by_proposer"`
		SkillDesiredByProposer string `json:"skill_desired_by_proposer"`
		Message                string `json:"message"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	listingID, err := uuid.Parse(requestData.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Находим объявление: владелец становится получателем предложения
	var ownerID, skillOfferedID, skillDesiredID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
		SELECT user_id, skill_offered_id, skill_desired_id FROM listings WHERE id = $1
	`, listingID).Scan(&ownerID, &skillOfferedID, &skillDesiredID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	// Нельзя делать предложение по собственному объявлению
	if ownerID == proposerID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нельзя отправить предложение на собственное объявление"})
	}

	// По умолчанию инициатор предлагает желаемый навык объявления
	// и хочет получить предлагаемый
	offeredByProposer := skillDesiredID
	if requestData.SkillOfferedByProposer != "" {
		offeredByProposer, err = uuid.Parse(requestData.SkillOfferedByProposer)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предлагаемого навыка"})
		}
	}

	desiredByProposer := skillOfferedID
	if requestData.SkillDesiredByProposer != "" {
		desiredByProposer, err = uuid.Parse(requestData.SkillDesiredByProposer)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID желаемого навыка"})
		}
	}

	proposalID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO trade_proposals (id, listing_id, proposer_id, recipient_id, skill_offered_by_proposer, skill_desired_by_proposer, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
	`, proposalID, listingID, proposerID, ownerID, offeredByProposer, desiredByProposer, requestData.Message)

	if err != nil {
		log.Printf("Ошибка вставки предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания предложения"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"proposal_id": proposalID,
		"message":     "Предложение успешно отправлено",
	})
}

// GetProposals возвращает предложения пользователя.
// Параметр type задает направление: incoming, outgoing или all (по умолчанию).
func (s *TradeService) GetProposals(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	direction := c.Query("type", "all")
	statusFilter := c.Query("status")

	query := proposalSelect
	args := []any{userID}

	switch direction {
	case "incoming":
		query += ` WHERE p.recipient_id = $1`
	case "outgoing":
		query += ` WHERE p.proposer_id = $1`
	default:
		query += ` WHERE (p.proposer_id = $1 OR p.recipient_id = $1)`
	}

	if statusFilter != "" {
		query += ` AND p.status = $2`
		args = append(args, statusFilter)
	}

	query += ` ORDER BY p.proposal_date DESC`

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, queryErr := db.Pool.Query(ctx, query, args...)
	if queryErr != nil {
		log.Printf("Ошибка запроса предложений: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложений"})
	}
	defer rows.Close()

	var proposals []models.TradeProposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			log.Printf("Ошибка сканирования предложения: %v", err)
			continue
		}

		proposal.Proposer = getUserInfo(ctx, proposal.ProposerID)
		proposal.Recipient = getUserInfo(ctx, proposal.RecipientID)
		proposals = append(proposals, *proposal)
	}

	return c.JSON(fiber.Map{
		"proposals": proposals,
		"count":     len(proposals),
	})
}

// GetProposal возвращает детальную информацию о предложении
func (s *TradeService) GetProposal(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	proposalUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	proposal, err := loadProposal(ctx, proposalUUID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка получения предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	// Предложение видно только его участникам
	if proposal.ProposerID != userID && proposal.RecipientID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому предложению"})
	}

	proposal.Proposer = getUserInfo(ctx, proposal.ProposerID)
	proposal.Recipient = getUserInfo(ctx, proposal.RecipientID)

	return c.JSON(fiber.Map{"proposal": proposal})
}

// UpdateProposalStatus меняет статус предложения.
// Получатель может принять, отклонить или предложить встречные условия,
// инициатор — отозвать. Принятие атомарно создает обмен.
func (s *TradeService) UpdateProposalStatus(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	proposalUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
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

	// Блокируем строку предложения до конца транзакции
	var proposal models.TradeProposal
	err = tx.QueryRow(ctx, `
		SELECT id, listing_id, proposer_id, recipient_id, skill_offered_by_proposer, skill_desired_by_proposer, status
		FROM trade_proposals
		WHERE id = $1
		FOR UPDATE
	`, proposalUUID).Scan(
		&proposal.ID,
		&proposal.ListingID,
		&proposal.ProposerID,
		&proposal.RecipientID,
		&proposal.SkillOfferedByProposer,
		&proposal.SkillDesiredByProposer,
		&proposal.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	// Проверяем права на смену статуса
	switch requestData.Status {
	case models.ProposalStatusAccepted, models.ProposalStatusRejected, models.ProposalStatusCountered:
		if proposal.RecipientID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только получатель может изменить статус предложения"})
		}
	case models.ProposalStatusWithdrawn:
		if proposal.ProposerID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только инициатор может отозвать предложение"})
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус предложения"})
	}

	if !models.CanTransitionProposal(proposal.Status, requestData.Status) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Предложение уже обработано"})
	}

	_, err = tx.Exec(ctx, `
		UPDATE trade_proposals SET status = $1, last_status_update = NOW() WHERE id = $2
	`, requestData.Status, proposalUUID)
	if err != nil {
		log.Printf("Ошибка обновления предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления предложения"})
	}

	response := fiber.Map{
		"success":     true,
		"proposal_id": proposalUUID,
		"status":      requestData.Status,
	}

	// Принятое предложение порождает обмен в той же транзакции
	if requestData.Status == models.ProposalStatusAccepted {
		tradeID := uuid.New()
		_, err = tx.Exec(ctx, `
			INSERT INTO trades (id, proposal_id, user1_id, user2_id, skill1_id, skill2_id, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'active')
		`, tradeID, proposalUUID, proposal.ProposerID, proposal.RecipientID,
			proposal.SkillOfferedByProposer, proposal.SkillDesiredByProposer)

		if err != nil {
			if db.IsUniqueViolation(err) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Обмен по этому предложению уже существует"})
			}
			log.Printf("Ошибка создания обмена: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания обмена"})
		}

		response["trade_id"] = tradeID
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(response)
}

// DeleteProposal удаляет предложение обмена. Доступно только инициатору.
func (s *TradeService) DeleteProposal(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	proposalUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var proposerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT proposer_id FROM trade_proposals WHERE id = $1", proposalUUID).Scan(&proposerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение не найдено"})
		}
		log.Printf("Ошибка запроса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения"})
	}

	if proposerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только инициатор может удалить предложение"})
	}

	_, err = db.Pool.Exec(ctx, "DELETE FROM trade_proposals WHERE id = $1", proposalUUID)
	if err != nil {
		log.Printf("Ошибка удаления предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления предложения"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Предложение успешно удалено",
	})
}

const proposalSelect = `
	SELECT p.id, p.listing_id, p.proposer_id, p.recipient_id,
	       p.skill_offered_by_proposer, p.skill_desired_by_proposer,
	       COALESCE(p.message, ''), p.status, p.proposal_date, p.last_status_update,
	       t.id
	FROM trade_proposals p
	LEFT JOIN trades t ON t.proposal_id = p.id`

func scanProposal(row pgx.Row) (*models.TradeProposal, error) {
	var proposal models.TradeProposal
	err := row.Scan(
		&proposal.ID,
		&proposal.ListingID,
		&proposal.ProposerID,
		&proposal.RecipientID,
		&proposal.SkillOfferedByProposer,
		&proposal.SkillDesiredByProposer,
		&proposal.Message,
		&proposal.Status,
		&proposal.ProposalDate,
		&proposal.LastStatusUpdate,
		&proposal.TradeID,
	)
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func loadProposal(ctx context.Context, proposalID uuid.UUID) (*models.TradeProposal, error) {
	return scanProposal(db.Pool.QueryRow(ctx, proposalSelect+` WHERE p.id = $1`, proposalID))
}
