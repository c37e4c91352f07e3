package http

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
	"github.com/emilykangdev/CanIParkHere/internal/events"
	"github.com/emilykangdev/CanIParkHere/internal/service"
	"github.com/emilykangdev/CanIParkHere/pkg/geoutil"
)

const internalErrorMessage = "Unable to check parking rules for this location. " +
	"Please try again or upload a photo of the parking sign."

// Handler contains all HTTP handlers
type Handler struct {
	rules     *service.RulesService
	signs     *service.SignService
	followups *service.FollowUpService
	repo      domain.DataRepository
	sessions  domain.SessionStore
	bridge    *service.SignAIBridge
	publisher *events.Publisher // nil when Kafka is not configured
}

// NewHandler creates a new handler
func NewHandler(
	rules *service.RulesService,
	signs *service.SignService,
	followups *service.FollowUpService,
	repo domain.DataRepository,
	sessions domain.SessionStore,
	bridge *service.SignAIBridge,
	publisher *events.Publisher,
) *Handler {
	return &Handler{
		rules:     rules,
		signs:     signs,
		followups: followups,
		repo:      repo,
		sessions:  sessions,
		bridge:    bridge,
		publisher: publisher,
	}
}

// HealthCheck reports per-dependency status. Always 200: a degraded
// dependency downgrades the status field, not the HTTP code.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	services := fiber.Map{}
	status := "healthy"

	if err := h.repo.Health(ctx); err != nil {
		services["store"] = "error"
		status = "degraded"
	} else {
		services["store"] = "ok"
	}

	if err := h.sessions.Health(ctx); err != nil {
		services["sessions"] = "error"
		status = "degraded"
	} else {
		services["sessions"] = "ok"
	}

	if err := h.bridge.Health(ctx); err != nil {
		services["sign_ai"] = "unreachable"
		status = "degraded"
	} else {
		services["sign_ai"] = "ok"
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"services":  services,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// CheckLocation resolves parking rules for a coordinate pair.
func (h *Handler) CheckLocation(c *fiber.Ctx) error {
	ctx := c.Context()

	var req domain.LocationCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Latitude == nil || req.Longitude == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Latitude and longitude are required",
		})
	}

	at := time.Now()
	if req.Datetime != "" {
		parsed, err := time.Parse(time.RFC3339, req.Datetime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "datetime must be an RFC 3339 timestamp",
			})
		}
		at = parsed
	}

	result, err := h.rules.CheckLocation(ctx, *req.Latitude, *req.Longitude, at)
	if err != nil {
		log.Printf("Location check failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": internalErrorMessage,
			"canPark": false,
		})
	}

	resp := domain.LocationCheckResponse{
		CanPark:     result.Verdict.CanPark,
		Message:     result.Verdict.Message,
		NearbyCount: result.NearbyCount,
	}
	if result.Nearest != nil {
		address := result.Nearest.Address
		if address == "" {
			address = "Unknown address"
		}
		resp.Location = &domain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		resp.NearestSpot = &domain.NearestSpotInfo{
			ID:       result.Nearest.ID,
			Type:     result.Nearest.Type,
			Distance: int(geoutil.RoundTo(result.Nearest.Distance*1000, 0)),
			Address:  address,
		}
		resp.Restrictions = result.Verdict.Restrictions
	}

	// Persist and publish the audit record asynchronously
	entry := domain.CheckLog{
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		CheckedAt:   at,
		CanPark:     result.Verdict.CanPark,
		NearbyCount: result.NearbyCount,
		Message:     result.Verdict.Message,
	}
	if result.Nearest != nil {
		id := result.Nearest.ID
		entry.NearestSpotID = &id
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.repo.SaveCheckLog(bgCtx, entry); err != nil {
			log.Printf("Failed to save check log: %v", err)
		}
		if h.publisher != nil {
			if err := h.publisher.PublishCheck(bgCtx, entry); err != nil {
				log.Printf("Failed to publish check event: %v", err)
			}
		}
	}()

	return c.JSON(resp)
}

// CheckImage analyzes an uploaded parking sign photo.
func (h *Handler) CheckImage(c *fiber.Ctx) error {
	ctx := c.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "An image file is required",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File must be an image",
		})
	}

	at := time.Now()
	if v := c.FormValue("datetime"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "datetime must be an RFC 3339 timestamp",
			})
		}
		at = parsed
	}

	f, err := fileHeader.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Unable to read the uploaded image. Please try again.",
		})
	}
	defer f.Close()

	resp, err := h.signs.CheckImage(ctx, f, at)
	if errors.Is(err, service.ErrNotAnImage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File must be an image",
		})
	}
	if err != nil {
		log.Printf("Sign check failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Unable to analyze the parking sign. Please try again.",
		})
	}

	return c.JSON(resp)
}

// FollowUp answers a question about a prior sign check.
func (h *Handler) FollowUp(c *fiber.Ctx) error {
	ctx := c.Context()

	var req domain.FollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" || req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sessionId and question are required",
		})
	}

	answer, err := h.followups.Ask(ctx, req.SessionID, req.Question, time.Now())
	if errors.Is(err, service.ErrSessionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}
	if err != nil {
		log.Printf("Follow-up failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Unable to answer the question. Please try again.",
		})
	}

	return c.JSON(domain.FollowUpResponse{Answer: answer})
}

// ListSpots returns the reference parking-spot collection.
func (h *Handler) ListSpots(c *fiber.Ctx) error {
	spots, err := h.repo.ListSpots(c.Context())
	if err != nil {
		log.Printf("Spot listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"message": "Unable to load parking data.",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    spots,
		"count":   len(spots),
	})
}
