package http

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SpotsGeoJSON exports the spot collection as a GeoJSON
// FeatureCollection for map clients.
func (h *Handler) SpotsGeoJSON(c *fiber.Ctx) error {
	spots, err := h.repo.ListSpots(c.Context())
	if err != nil {
		log.Printf("Spot listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Unable to load parking data.",
		})
	}

	fc := geojson.NewFeatureCollection()
	for _, spot := range spots {
		f := geojson.NewFeature(orb.Point{spot.Longitude, spot.Latitude})
		f.Properties["id"] = spot.ID
		f.Properties["type"] = spot.Type
		if spot.Address != "" {
			f.Properties["address"] = spot.Address
		}
		if spot.Restrictions != "" {
			f.Properties["restrictions"] = spot.Restrictions
		}
		fc.Append(f)
	}

	if err := c.JSON(fc); err != nil {
		return err
	}
	// c.JSON stamps application/json; GeoJSON has its own media type.
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return nil
}
