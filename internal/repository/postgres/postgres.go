package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListSpots retrieves the full parking-spot collection from PostgreSQL
func (r *PostgresRepository) ListSpots(ctx context.Context) ([]domain.ParkingSpot, error) {
	query := `
		SELECT id, latitude, longitude, type,
			   COALESCE(address, ''), COALESCE(restrictions, '')
		FROM parking_spots
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query parking spots: %w", err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		var s domain.ParkingSpot
		err := rows.Scan(&s.ID, &s.Latitude, &s.Longitude, &s.Type, &s.Address, &s.Restrictions)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan spot row: %w", err)
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: spot rows failed: %w", err)
	}

	return spots, nil
}

// SaveCheckLog persists a location-check audit record to PostgreSQL
func (r *PostgresRepository) SaveCheckLog(ctx context.Context, entry domain.CheckLog) error {
	query := `
		INSERT INTO check_logs (
			latitude, longitude, checked_at, can_park,
			nearest_spot_id, nearby_count, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.Latitude, entry.Longitude, entry.CheckedAt, entry.CanPark,
		entry.NearestSpotID, entry.NearbyCount, entry.Message,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save check log: %w", err)
	}

	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
