package listing

import (
	"github.com/gofiber/fiber/v3"
	"github.com/skillswap/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений.
// Чтение публичное, поэтому middleware навешивается на конкретные маршруты.
func (s *ListingService) SetupRoutes(app *fiber.App) {
	app.Get("/api/listings", s.GetPublicListings)
	app.Get("/api/listings/:id", s.GetListing)

	auth := middleware.AuthMiddleware(s.jwtService)
	app.Post("/api/listings", s.CreateListing, auth)
	app.Put("/api/listings/:id", s.UpdateListing, auth)
	app.Patch("/api/listings/:id", s.PatchListing, auth)
	app.Delete("/api/listings/:id", s.DeleteListing, auth)

	// Изображения портфолио
	app.Post("/api/listings/:id/images", s.AddListingImages, auth)
	app.Delete("/api/listings/portfolio-images/:id", s.DeletePortfolioImage, auth)

	// Изображения без привязки к объявлению
	app.Post("/api/portfolio-images", s.CreateUserImage, auth)
}
