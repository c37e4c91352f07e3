package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

// sampleSpots is the built-in San Francisco reference set used when no
// CSV file or database is configured.
var sampleSpots = []domain.ParkingSpot{
	{ID: 1, Latitude: 37.7749, Longitude: -122.4194, Type: domain.SpotTypeFree, Address: "123 Market St, San Francisco, CA"},
	{ID: 2, Latitude: 37.7849, Longitude: -122.4094, Type: domain.SpotTypePaid, Address: "456 Mission St, San Francisco, CA", Restrictions: "weekday"},
	{ID: 3, Latitude: 37.7649, Longitude: -122.4294, Type: domain.SpotTypeResident, Address: "789 Valencia St, San Francisco, CA", Restrictions: "resident_only"},
	{ID: 4, Latitude: 37.7949, Longitude: -122.3994, Type: domain.SpotTypeLoading, Address: "321 Howard St, San Francisco, CA", Restrictions: "business_hours"},
	{ID: 5, Latitude: 37.7549, Longitude: -122.4394, Type: domain.SpotTypePaid, Address: "654 Folsom St, San Francisco, CA", Restrictions: "weekday"},
}

// SpotStore implements domain.DataRepository over an in-process spot
// collection, either the compiled-in sample set or a CSV file. Reads are
// lock-protected so a CSV reload can swap the data under live traffic.
type SpotStore struct {
	mu      sync.RWMutex
	spots   []domain.ParkingSpot
	csvPath string
}

// NewSampleStore returns a store backed by the built-in sample data.
func NewSampleStore() *SpotStore {
	spots := make([]domain.ParkingSpot, len(sampleSpots))
	copy(spots, sampleSpots)
	return &SpotStore{spots: spots}
}

// NewCSVStore returns a store backed by a CSV file with the layout
// id,latitude,longitude,type,address,restrictions. The file is read
// eagerly; an unreadable or malformed file is an error, never a silent
// empty store.
func NewCSVStore(path string) (*SpotStore, error) {
	s := &SpotStore{csvPath: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the CSV file and atomically swaps in the new data.
// On failure the previous collection stays in place.
func (s *SpotStore) Reload() error {
	if s.csvPath == "" {
		return nil
	}

	f, err := os.Open(s.csvPath)
	if err != nil {
		return fmt.Errorf("memory: failed to open spot data: %w", err)
	}
	defer f.Close()

	spots, err := parseCSV(f)
	if err != nil {
		return fmt.Errorf("memory: failed to parse %s: %w", s.csvPath, err)
	}

	s.mu.Lock()
	s.spots = spots
	s.mu.Unlock()
	return nil
}

// ListSpots returns a copy of the full spot collection.
func (s *SpotStore) ListSpots(ctx context.Context) ([]domain.ParkingSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ParkingSpot, len(s.spots))
	copy(out, s.spots)
	return out, nil
}

// SaveCheckLog is a no-op without a database.
func (s *SpotStore) SaveCheckLog(ctx context.Context, entry domain.CheckLog) error {
	return nil
}

// Health always returns nil for the in-process store.
func (s *SpotStore) Health(ctx context.Context) error {
	return nil
}

// parseCSV decodes spot records from a header-prefixed CSV stream.
// Latitude and longitude are required per row; address and restrictions
// may be empty.
func parseCSV(r io.Reader) ([]domain.ParkingSpot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header row: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"id", "latitude", "longitude", "type"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var spots []domain.ParkingSpot
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := strconv.Atoi(field(row, "id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad id: %w", line, err)
		}
		lat, err := strconv.ParseFloat(field(row, "latitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(field(row, "longitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad longitude: %w", line, err)
		}

		spots = append(spots, domain.ParkingSpot{
			ID:           id,
			Latitude:     lat,
			Longitude:    lon,
			Type:         field(row, "type"),
			Address:      field(row, "address"),
			Restrictions: field(row, "restrictions"),
		})
	}

	return spots, nil
}
