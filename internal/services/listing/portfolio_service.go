package listing

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
)

// AddListingImages добавляет изображения к существующему объявлению
func (s *ListingService) AddListingImages(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData struct {
		Images []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if len(requestData.Images) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Не переданы изображения"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, что объявление существует и принадлежит пользователю
	var ownerID uuid.UUID
	err = db.Pool.QueryRow(ctx, "SELECT user_id FROM listings WHERE id = $1", listingUUID).Scan(&ownerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к этому объявлению"})
	}

	// Считаем уже прикрепленные изображения и проверяем лимит
	var existing int
	err = db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM portfolio_images WHERE listing_id = $1", listingUUID).Scan(&existing)
	if err != nil {
		log.Printf("Ошибка подсчета изображений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	if err := models.CheckImageLimit(existing, len(requestData.Images), models.MaxImagesOnAppend); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	var created []uuid.UUID
	for _, img := range requestData.Images {
		imageID := uuid.New()
		_, err = tx.Exec(ctx, `
			INSERT INTO portfolio_images (id, user_id, listing_id, image_url, public_id)
			VALUES ($1, $2, $3, $4, $5)
		`, imageID, userID, listingUUID, img.ImageURL, img.PublicID)

		if err != nil {
			log.Printf("Ошибка вставки изображения: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения изображений"})
		}
		created = append(created, imageID)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"image_ids": created,
		"message":   "Изображения успешно добавлены",
	})
}

// CreateUserImage сохраняет изображение портфолио, не привязанное к объявлению
func (s *ListingService) CreateUserImage(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var requestData RequestImage
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.ImageURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "URL изображения обязателен"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Лимит считается по изображениям без объявления
	var existing int
	err = db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM portfolio_images WHERE user_id = $1 AND listing_id IS NULL
	`, userID).Scan(&existing)
	if err != nil {
		log.Printf("Ошибка подсчета изображений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	if err := models.CheckImageLimit(existing, 1, models.MaxUserImages); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	imageID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO portfolio_images (id, user_id, image_url, public_id)
		VALUES ($1, $2, $3, $4)
	`, imageID, userID, requestData.ImageURL, requestData.PublicID)

	if err != nil {
		log.Printf("Ошибка вставки изображения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения изображения"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"image_id": imageID,
		"message":  "Изображение успешно добавлено",
	})
}

// DeletePortfolioImage удаляет изображение портфолио владельца
func (s *ListingService) DeletePortfolioImage(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	imageUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID изображения"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	var ownerID uuid.UUID
	var publicID string
	err = db.Pool.QueryRow(ctx, `
		SELECT user_id, COALESCE(public_id, '') FROM portfolio_images WHERE id = $1
	`, imageUUID).Scan(&ownerID, &publicID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Изображение не найдено"})
		}
		log.Printf("Ошибка запроса изображения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения изображения"})
	}

	if ownerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к удалению этого изображения"})
	}

	_, err = db.Pool.Exec(ctx, "DELETE FROM portfolio_images WHERE id = $1", imageUUID)
	if err != nil {
		log.Printf("Ошибка удаления изображения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления изображения"})
	}

	// Зачищаем ресурс в Cloudinary, ошибка не влияет на ответ
	if err := s.cloudinary.DestroyAsset(ctx, publicID); err != nil {
		log.Printf("%v", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Изображение успешно удалено",
	})
}
