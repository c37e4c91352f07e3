package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler, limiter *RateLimiter) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1", limiter.Limit())
	{
		// Location-based parking check
		api.Post("/parking-location", handler.CheckLocation)

		// Sign-photo analysis and follow-up Q&A (proxied to the AI backend)
		api.Post("/parking-image", handler.CheckImage)
		api.Post("/followup", handler.FollowUp)

		// Reference data exports
		api.Get("/spots", handler.ListSpots)
		api.Get("/spots.geojson", handler.SpotsGeoJSON)
	}
}
