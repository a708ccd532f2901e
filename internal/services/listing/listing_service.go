package listing

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/db"
	"github.com/skillswap/skillswap-api/internal/models"
	"github.com/skillswap/skillswap-api/internal/services/cloudinary"
	"github.com/skillswap/skillswap-api/internal/utils"
)

// RequestImage представляет структуру изображения в запросе
type RequestImage struct {
	ImageURL string `json:"image_url"`
	PublicID string `json:"public_id"`
}

// ListingService представляет сервис для работы с объявлениями
type ListingService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	cloudinary *cloudinary.CloudinaryService
}

// NewListingService создает новый экземпляр ListingService
func NewListingService(cfg *config.Config, cloudinaryService *cloudinary.CloudinaryService) *ListingService {
	return &ListingService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		cloudinary: cloudinaryService,
	}
}

// CreateListing обрабатывает создание нового объявления.
// Значение "other" в skill_offered/skill_desired означает, что клиент передал
// произвольное название навыка в custom_offer_skill/custom_desired_skill —
// навык находится по точному имени или создается.
func (s *ListingService) CreateListing(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Извлекаем данные из запроса
	var requestData struct {
		SkillOffered       string         `json:"skill_offered"`
		CustomOfferSkill   string         `json:"custom_offer_skill"`
		SkillDesired       string         `json:"skill_desired"`
		CustomDesiredSkill string         `json:"custom_desired_skill"`
		Title              string         `json:"title"`
		Description        string         `json:"description"`
		Status             string         `json:"status"`
		LocationPreference string         `json:"location_preference"`
		PortfolioLink      string         `json:"portfolio_link"`
		Images             []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Валидация обязательных полей
	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
	}

	// Проверка валидности status
	if requestData.Status == "" {
		requestData.Status = models.ListingStatusActive // По умолчанию — активное
	}
	if !models.IsValidListingStatus(requestData.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус объявления"})
	}

	// Проверяем лимит изображений до записи, чтобы не оставить объявление без картинок
	if err := models.CheckImageLimit(0, len(requestData.Images), models.MaxImagesOnCreate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// Начинаем транзакцию: объявление и изображения сохраняются атомарно
	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Разрешаем ссылки на навыки
	skillOfferedID, err := resolveSkillRef(ctx, tx, requestData.SkillOffered, requestData.CustomOfferSkill)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Не удалось определить предлагаемый навык"})
	}

	skillDesiredID, err := resolveSkillRef(ctx, tx, requestData.SkillDesired, requestData.CustomDesiredSkill)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Не удалось определить желаемый навык"})
	}

	// Создаем ID для нового объявления
	listingID := uuid.New()

	// Вставляем объявление
	_, err = tx.Exec(ctx, `
		INSERT INTO listings (id, user_id, skill_offered_id, skill_desired_id, title, description, status, location_preference, portfolio_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, listingID, userUUID, skillOfferedID, skillDesiredID, requestData.Title,
		requestData.Description, requestData.Status, requestData.LocationPreference, requestData.PortfolioLink)

	if err != nil {
		log.Printf("Ошибка вставки объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения объявления"})
	}

	// Вставляем изображения, если они есть
	for _, img := range requestData.Images {
		_, err = tx.Exec(ctx, `
			INSERT INTO portfolio_images (id, user_id, listing_id, image_url, public_id)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), userUUID, listingID, img.ImageURL, img.PublicID)

		if err != nil {
			log.Printf("Ошибка вставки изображения: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения изображений"})
		}
	}

	// Фиксируем транзакцию
	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"listing_id": listingID,
		"message":    "Объявление успешно создано",
	})
}

// GetPublicListings возвращает список активных объявлений с пагинацией
func (s *ListingService) GetPublicListings(c fiber.Ctx) error {
	// Параметры пагинации
	limit := 20 // По умолчанию показываем 20 объявлений
	offsetStr := c.Query("offset", "0")
	offset, _ := strconv.Atoi(offsetStr)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, queryErr := db.Pool.Query(ctx, listingSelect+`
		WHERE l.status = 'active'
		ORDER BY l.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)

	if queryErr != nil {
		log.Printf("Ошибка запроса объявлений: %v", queryErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}
	defer rows.Close()

	var listings []models.SkillListing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		listing.Images = loadListingImages(ctx, listing.ID)
		listing.User = getUserInfo(ctx, listing.UserID)
		listings = append(listings, *listing)
	}

	// Получаем общее количество объявлений для пагинации
	var total int
	countErr := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM listings WHERE status = 'active'
	`).Scan(&total)

	if countErr != nil {
		log.Printf("Ошибка подсчета объявлений: %v", countErr)
		// Игнорируем ошибку, просто не вернем общее количество
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetListing возвращает детальную информацию об объявлении.
// Объявление доступно по прямому ID в любом статусе.
func (s *ListingService) GetListing(c fiber.Ctx) error {
	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := scanListing(db.Pool.QueryRow(ctx, listingSelect+` WHERE l.id = $1`, listingUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка получения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	listing.Images = loadListingImages(ctx, listing.ID)
	listing.User = getUserInfo(ctx, listing.UserID)

	return c.JSON(fiber.Map{"listing": listing})
}

// UpdateListing полностью обновляет существующее объявление
func (s *ListingService) UpdateListing(c fiber.Ctx) error {
	return s.updateListing(c, false)
}

// PatchListing частично обновляет существующее объявление
func (s *ListingService) PatchListing(c fiber.Ctx) error {
	return s.updateListing(c, true)
}

func (s *ListingService) updateListing(c fiber.Ctx, partial bool) error {
	userIDStr := c.Locals("userID").(string)

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Поля-указатели позволяют отличить отсутствующее значение при PATCH
	var requestData struct {
		SkillOffered       *string `json:"skill_offered"`
		SkillDesired       *string `json:"skill_desired"`
		Title              *string `json:"title"`
		Description        *string `json:"description"`
		Status             *string `json:"status"`
		LocationPreference *string `json:"location_preference"`
		PortfolioLink      *string `json:"portfolio_link"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if !partial {
		// При полном обновлении обязательные поля должны присутствовать
		if requestData.Title == nil || *requestData.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название обязательно"})
		}
		if requestData.SkillOffered == nil || requestData.SkillDesired == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Укажите предлагаемый и желаемый навыки"})
		}
	}

	if requestData.Status != nil && !models.IsValidListingStatus(*requestData.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус объявления"})
	}

	// Проверяем, что объявление существует и принадлежит пользователю
	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := scanListing(db.Pool.QueryRow(ctx, listingSelect+` WHERE l.id = $1`, listingUUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	// Проверка, что пользователь является владельцем объявления
	if listing.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к редактированию этого объявления"})
	}

	// Применяем переданные поля поверх текущих значений
	if requestData.Title != nil {
		listing.Title = *requestData.Title
	}
	if requestData.Description != nil {
		listing.Description = *requestData.Description
	}
	if requestData.Status != nil {
		listing.Status = *requestData.Status
	}
	if requestData.LocationPreference != nil {
		listing.LocationPreference = *requestData.LocationPreference
	}
	if requestData.PortfolioLink != nil {
		listing.PortfolioLink = *requestData.PortfolioLink
	}
	if requestData.SkillOffered != nil {
		id, err := uuid.Parse(*requestData.SkillOffered)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предлагаемого навыка"})
		}
		listing.SkillOfferedID = id
	}
	if requestData.SkillDesired != nil {
		id, err := uuid.Parse(*requestData.SkillDesired)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID желаемого навыка"})
		}
		listing.SkillDesiredID = id
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE listings
		SET skill_offered_id = $1, skill_desired_id = $2, title = $3, description = $4,
		    status = $5, location_preference = $6, portfolio_link = $7, updated_at = NOW()
		WHERE id = $8
	`, listing.SkillOfferedID, listing.SkillDesiredID, listing.Title, listing.Description,
		listing.Status, listing.LocationPreference, listing.PortfolioLink, listingUUID)

	if err != nil {
		log.Printf("Ошибка обновления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления объявления"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"listing_id": listingUUID,
		"message":    "Объявление успешно обновлено",
	})
}

// DeleteListing удаляет объявление вместе с изображениями и предложениями
func (s *ListingService) DeleteListing(c fiber.Ctx) error {
	userIDStr := c.Locals("userID").(string)

	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	// Проверяем, что объявление существует и принадлежит пользователю
	ctx, cancel := db.GetContext()
	defer cancel()

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
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к удалению этого объявления"})
	}

	// Начинаем транзакцию
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	defer tx.Rollback(ctx)

	// Сначала удаляем связанные изображения и предложения
	_, err = tx.Exec(ctx, "DELETE FROM portfolio_images WHERE listing_id = $1", listingUUID)
	if err != nil {
		log.Printf("Ошибка удаления изображений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	_, err = tx.Exec(ctx, "DELETE FROM trade_proposals WHERE listing_id = $1", listingUUID)
	if err != nil {
		log.Printf("Ошибка удаления предложений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	// Удаляем само объявление
	_, err = tx.Exec(ctx, "DELETE FROM listings WHERE id = $1", listingUUID)
	if err != nil {
		log.Printf("Ошибка удаления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	// Фиксируем транзакцию
	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Объявление успешно удалено",
	})
}

const listingSelect = `
	SELECT l.id, l.user_id, l.skill_offered_id, l.skill_desired_id,
	       so.skill_name, sd.skill_name,
	       l.title, COALESCE(l.description, ''), l.status,
	       COALESCE(l.location_preference, ''), COALESCE(l.portfolio_link, ''),
	       l.created_at, l.updated_at
	FROM listings l
	JOIN skills so ON so.id = l.skill_offered_id
	JOIN skills sd ON sd.id = l.skill_desired_id`

func scanListing(row pgx.Row) (*models.SkillListing, error) {
	var listing models.SkillListing
	err := row.Scan(
		&listing.ID,
		&listing.UserID,
		&listing.SkillOfferedID,
		&listing.SkillDesiredID,
		&listing.SkillOfferedName,
		&listing.SkillDesiredName,
		&listing.Title,
		&listing.Description,
		&listing.Status,
		&listing.LocationPreference,
		&listing.PortfolioLink,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// resolveSkillRef превращает ссылку на навык из запроса в его ID.
// Ссылка — либо UUID существующего навыка, либо плейсхолдер "other"
// с произвольным названием в customName.
func resolveSkillRef(ctx context.Context, tx pgx.Tx, ref, customName string) (uuid.UUID, error) {
	if strings.EqualFold(strings.TrimSpace(ref), models.PlaceholderSkillName) {
		name := strings.TrimSpace(customName)
		if name == "" {
			return uuid.Nil, pgx.ErrNoRows
		}

		// Ищем по точному имени, создаем при отсутствии
		var skillID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM skills WHERE skill_name = $1`, name).Scan(&skillID)
		if err == nil {
			return skillID, nil
		}
		if err != pgx.ErrNoRows {
			return uuid.Nil, err
		}

		skillID = uuid.New()
		_, err = tx.Exec(ctx, `
			INSERT INTO skills (id, skill_name, category, description)
			VALUES ($1, $2, 'General', '')
		`, skillID, name)
		if err != nil {
			return uuid.Nil, err
		}
		return skillID, nil
	}

	skillID, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, err
	}

	// Проверяем, что навык существует
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM skills WHERE id = $1)`, skillID).Scan(&exists); err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, pgx.ErrNoRows
	}

	return skillID, nil
}

// loadListingImages получает изображения объявления
func loadListingImages(ctx context.Context, listingID uuid.UUID) []models.PortfolioImage {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, listing_id, image_url, COALESCE(public_id, ''), uploaded_at
		FROM portfolio_images
		WHERE listing_id = $1
		ORDER BY uploaded_at ASC
	`, listingID)

	if err != nil {
		log.Printf("Ошибка запроса изображений: %v", err)
		return nil
	}
	defer rows.Close()

	var images []models.PortfolioImage
	for rows.Next() {
		var img models.PortfolioImage
		if err := rows.Scan(&img.ID, &img.UserID, &img.ListingID, &img.ImageURL, &img.PublicID, &img.UploadedAt); err != nil {
			log.Printf("Ошибка сканирования изображения: %v", err)
			continue
		}
		images = append(images, img)
	}

	return images
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
