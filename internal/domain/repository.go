package domain

import (
	"context"
	"time"
)

// CheckLog records one location check for the audit trail.
type CheckLog struct {
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	CheckedAt     time.Time `json:"checked_at"`
	CanPark       bool      `json:"can_park"`
	NearestSpotID *int      `json:"nearest_spot_id,omitempty"`
	NearbyCount   int       `json:"nearby_count"`
	Message       string    `json:"message"`
}

// DataRepository defines the interface for reference data and audit
// persistence. The domain owns the interface; storage implementations
// live under internal/repository.
type DataRepository interface {
	// ListSpots returns the full collection of parking spots.
	ListSpots(ctx context.Context) ([]ParkingSpot, error)

	// SaveCheckLog persists a location-check audit record.
	SaveCheckLog(ctx context.Context, entry CheckLog) error

	// Health checks storage connectivity.
	Health(ctx context.Context) error
}

// SessionStore holds sign analyses between a photo check and its
// follow-up questions.
type SessionStore interface {
	// Put stores an analysis under the given session id.
	Put(ctx context.Context, id string, analysis SignAnalysis) error

	// Get retrieves an analysis. The second return is false when the
	// session does not exist or has expired.
	Get(ctx context.Context, id string) (SignAnalysis, bool, error)

	// Health checks store connectivity.
	Health(ctx context.Context) error
}
