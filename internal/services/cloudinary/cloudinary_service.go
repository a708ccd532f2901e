package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/skillswap/skillswap-api/internal/config"
)

// CloudinaryService предоставляет методы для работы с Cloudinary
type CloudinaryService struct {
	cfg          *config.Config
	client       *cld.Cloudinary
	uploadFolder string
	uploadPreset string
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg *config.Config) *CloudinaryService {
	var client *cld.Cloudinary

	if cfg.CloudinaryConfig.CloudName != "" {
		var err error
		client, err = cld.NewFromParams(
			cfg.CloudinaryConfig.CloudName,
			cfg.CloudinaryConfig.APIKey,
			cfg.CloudinaryConfig.APISecret,
		)
		if err != nil {
			log.Printf("Ошибка инициализации клиента Cloudinary: %v", err)
			client = nil
		}
	}

	return &CloudinaryService{
		cfg:          cfg,
		client:       client,
		uploadFolder: cfg.CloudinaryConfig.UploadFolder,
		uploadPreset: cfg.CloudinaryConfig.UploadPreset,
	}
}

// GenerateSignature создаёт корректную подпись для Cloudinary
func (s *CloudinaryService) GenerateSignature(params map[string]string) string {
	// Сортируем ключи параметров
	var keys []string
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Формируем строку для подписи
	var signParts []string
	for _, k := range keys {
		signParts = append(signParts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	signatureString := strings.Join(signParts, "&")

	// Добавляем API-секрет в конец строки
	signatureString += s.cfg.CloudinaryConfig.APISecret

	// Создаем SHA-1 хеш
	h := sha1.New()
	h.Write([]byte(signatureString))

	// Возвращаем подпись в виде шестнадцатеричной строки
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateUploadParams создаёт параметры для прямой загрузки изображений
// портфолио с клиента
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	// Группа загрузки объединяет изображения одной операции
	uploadGroupID := c.Query("upload_group_id")
	if uploadGroupID == "" {
		uploadGroupID = uuid.New().String()
	}

	// Текущий timestamp
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	// Параметры для подписи
	params := map[string]string{
		"timestamp":     timestamp,
		"folder":        s.uploadFolder,
		"upload_preset": s.uploadPreset,
		"context":       fmt.Sprintf("user_id=%s|upload_group_id=%s", userID, uploadGroupID),
	}

	// Генерируем подпись
	signature := s.GenerateSignature(params)

	// Возвращаем параметры
	return c.JSON(fiber.Map{
		"timestamp":       timestamp,
		"signature":       signature,
		"api_key":         s.cfg.CloudinaryConfig.APIKey,
		"cloud_name":      s.cfg.CloudinaryConfig.CloudName,
		"folder":          s.uploadFolder,
		"upload_preset":   s.uploadPreset,
		"context":         params["context"],
		"upload_group_id": uploadGroupID,
	})
}

// DestroyAsset удаляет ресурс из Cloudinary по его public_id.
// Ошибки не фатальны: запись в базе уже удалена, ресурс можно зачистить позже.
func (s *CloudinaryService) DestroyAsset(ctx context.Context, publicID string) error {
	if s.client == nil || publicID == "" {
		return nil
	}

	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("ошибка удаления ресурса Cloudinary %s: %w", publicID, err)
	}

	return nil
}
