package review

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

// ReviewService представляет сервис для работы с отзывами
type ReviewService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewReviewService создает новый экземпляр ReviewService
func NewReviewService(cfg *config.Config) *ReviewService {
	return &ReviewService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateReview создает отзыв по обмену. Автором может быть только участник
// обмена, получателем автоматически становится второй участник. Рейтинг
// пользователя пересчитывается в той же транзакции.
func (s *ReviewService) CreateReview(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	reviewerID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		TradeID         string `json:"trade_id"`
		Rating          int    `json:"rating"`
		Comment         string `json:"comment"`
		Criteria1Rating *int   `json:"criteria1_rating"`
		Criteria2Rating *int   `json:"criteria2_rating"`
		IsAnonymous     bool   `json:"is_anonymous"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	tradeID, err := uuid.Parse(requestData.TradeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	if !models.IsValidRating(requestData.Rating) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Оценка должна быть от 1 до 5"})
	}
	if requestData.Criteria1Rating != nil && !models.IsValidRating(*requestData.Criteria1Rating) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Оценка критерия должна быть от 1 до 5"})
	}
	if requestData.Criteria2Rating != nil && !models.IsValidRating(*requestData.Criteria2Rating) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Оценка критерия должна быть от 1 до 5"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем обмен и определяем получателя отзыва
	var trade models.Trade
	err = db.Pool.QueryRow(ctx, `
		SELECT id, user1_id, user2_id, status FROM trades WHERE id = $1
	`, tradeID).Scan(&trade.ID, &trade.User1ID, &trade.User2ID, &trade.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Обмен не найден"})
		}
		log.Printf("Ошибка запроса обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения обмена"})
	}

	if !trade.IsParticipant(reviewerID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Отзыв может оставить только участник обмена"})
	}

	reviewedID := trade.OtherParticipant(reviewerID)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	reviewID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, trade_id, reviewer_user_id, reviewed_user_id, rating, comment, criteria_1_rating, criteria_2_rating, is_anonymous)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, reviewID, tradeID, reviewerID, reviewedID, requestData.Rating, requestData.Comment,
		requestData.Criteria1Rating, requestData.Criteria2Rating, requestData.IsAnonymous)

	if err != nil {
		if db.IsUniqueViolation(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вы уже оставили отзыв по этому обмену"})
		}
		log.Printf("Ошибка вставки отзыва: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка создания отзыва"})
	}

	if err = recalcUserRating(ctx, tx, reviewedID); err != nil {
		log.Printf("Ошибка пересчета рейтинга: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления рейтинга"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"review_id": reviewID,
		"message":   "Отзыв успешно создан",
	})
}

// GetReviews возвращает отзывы по обмену. У анонимных отзывов автор скрыт.
func (s *ReviewService) GetReviews(c fiber.Ctx) error {
	tradeIDStr := c.Query("trade_id")
	if tradeIDStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Параметр trade_id обязателен"})
	}

	tradeID, err := uuid.Parse(tradeIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID обмена"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, queryErr := db.Pool.Query(ctx, reviewSelect+`
		WHERE r.trade_id = $1
		ORDER BY r.review_date DESC
	`, tradeID)

	if queryErr != nil {
		log.Printf("Ошибка запроса отзывов: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения отзывов"})
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			log.Printf("Ошибка сканирования отзыва: %v", err)
			continue
		}

		if !review.IsAnonymous {
			review.Reviewer = getUserInfo(ctx, review.ReviewerUserID)
		}
		reviews = append(reviews, *review)
	}

	return c.JSON(fiber.Map{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// GetReview возвращает один отзыв
func (s *ReviewService) GetReview(c fiber.Ctx) error {
	reviewUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID отзыва"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	review, err := scanReview(db.Pool.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, reviewUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Отзыв не найден"})
		}
		log.Printf("Ошибка получения отзыва: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения отзыва"})
	}

	if !review.IsAnonymous {
		review.Reviewer = getUserInfo(ctx, review.ReviewerUserID)
	}

	return c.JSON(fiber.Map{"review": review})
}

// UpdateReview редактирует отзыв. Доступно только его автору,
// рейтинг получателя пересчитывается.
func (s *ReviewService) UpdateReview(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	reviewUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID отзыва"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Rating          *int    `json:"rating"`
		Comment         *string `json:"comment"`
		Criteria1Rating *int    `json:"criteria1_rating"`
		Criteria2Rating *int    `json:"criteria2_rating"`
		IsAnonymous     *bool   `json:"is_anonymous"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Rating != nil && !models.IsValidRating(*requestData.Rating) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Оценка должна быть от 1 до 5"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	review, err := scanReview(db.Pool.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, reviewUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Отзыв не найден"})
		}
		log.Printf("Ошибка запроса отзыва: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения отзыва"})
	}

	if review.ReviewerUserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только автор может редактировать отзыв"})
	}

	if requestData.Rating != nil {
		review.Rating = *requestData.Rating
	}
	if requestData.Comment != nil {
		review.Comment = *requestData.Comment
	}
	if requestData.Criteria1Rating != nil {
		review.Criteria1Rating = requestData.Criteria1Rating
	}
	if requestData.Criteria2Rating != nil {
		review.Criteria2Rating = requestData.Criteria2Rating
	}
	if requestData.IsAnonymous != nil {
		review.IsAnonymous = *requestData.IsAnonymous
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE reviews
		SET rating = $1, comment = $2, criteria_1_rating = $3, criteria_2_rating = $4, is_anonymous = $5
		WHERE id = $6
	`, review.Rating, review.Comment, review.Criteria1Rating, review.Criteria2Rating, review.IsAnonymous, reviewUUID)

	if err != nil {
		log.Printf("Ошибка обновления отзыва: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления отзыва"})
	}

	if err = recalcUserRating(ctx, tx, review.ReviewedUserID); err != nil {
		log.Printf("Ошибка пересчета рейтинга: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления рейтинга"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"review_id": reviewUUID,
		"message":   "Отзыв успешно обновлен",
	})
}

// DeleteReview удаляет отзыв. Доступно только его автору,
// рейтинг получателя пересчитывается.
func (s *ReviewService) DeleteReview(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	reviewUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID отзыва"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var reviewerID, reviewedID uuid.UUID
	err = db.Pool.QueryRow(ctx, `
		SELECT reviewer_user_id, reviewed_user_id FROM reviews WHERE id = $1
	`, reviewUUID).Scan(&reviewerID, &reviewedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Отзыв не найден"})
		}
		log.Printf("Ошибка запроса отзыва: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения отзыва"})
	}

	if reviewerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только автор может удалить отзыв"})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM reviews WHERE id = $1", reviewUUID)
	if err != nil {
		log.Printf("Ошибка удаления отзыва: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления отзыва"})
	}

	if err = recalcUserRating(ctx, tx, reviewedID); err != nil {
		log.Printf("Ошибка пересчета рейтинга: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления рейтинга"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Отзыв удален",
	})
}

const reviewSelect = `
	SELECT r.id, r.trade_id, r.reviewer_user_id, r.reviewed_user_id, r.rating,
	       COALESCE(r.comment, ''), r.criteria_1_rating, r.criteria_2_rating,
	       r.is_anonymous, r.review_date
	FROM reviews r`

func scanReview(row pgx.Row) (*models.Review, error) {
	var review models.Review
	err := row.Scan(
		&review.ID,
		&review.TradeID,
		&review.ReviewerUserID,
		&review.ReviewedUserID,
		&review.Rating,
		&review.Comment,
		&review.Criteria1Rating,
		&review.Criteria2Rating,
		&review.IsAnonymous,
		&review.ReviewDate,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// recalcUserRating пересчитывает агрегаты рейтинга пользователя по его отзывам
func recalcUserRating(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE users
		SET rating = (SELECT AVG(rating) FROM reviews WHERE reviewed_user_id = $1),
		    num_reviews = (SELECT COUNT(*) FROM reviews WHERE reviewed_user_id = $1)
		WHERE id = $1
	`, userID)
	return err
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
