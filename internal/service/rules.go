package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
	"github.com/emilykangdev/CanIParkHere/pkg/geoutil"
)

// DefaultRadiusKm is the lookup radius around the query point (100 m).
const DefaultRadiusKm = 0.1

// Enforcement windows, in fractional local hours. Intervals are
// half-open: a weekday restriction active 8am-6pm ends at 17:59:59.
const (
	weekdayRestrictionStart = 8.0
	weekdayRestrictionEnd   = 18.0
	loadingZoneStart        = 7.0
	loadingZoneEnd          = 19.0
)

// NoDataMessage distinguishes "no information" from "information says no".
const NoDataMessage = "No parking information available for this location. " +
	"Try moving closer to a known parking area or upload a photo of the parking sign."

// FindNearbySpots annotates every spot with its Haversine distance from
// the query point, keeps those within radiusKm, and sorts ascending by
// distance. Ties keep the input order. The result may be empty.
func FindNearbySpots(lat, lon float64, spots []domain.ParkingSpot, radiusKm float64) []domain.NearbySpot {
	nearby := make([]domain.NearbySpot, 0, len(spots))
	for _, spot := range spots {
		d := geoutil.Haversine(lat, lon, spot.Latitude, spot.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, domain.NearbySpot{ParkingSpot: spot, Distance: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby
}

// EvaluateSpot derives a verdict for the given spot at the given instant.
// All applicable rules accumulate; CanPark turns false as soon as any
// disqualifying rule fires and stays false. Day-of-week and hour are
// taken from the instant as passed in, so callers pick the zone.
func EvaluateSpot(spot domain.NearbySpot, at time.Time) domain.Verdict {
	hour := float64(at.Hour()) + float64(at.Minute())/60
	weekday := at.Weekday()

	canPark := true
	var restrictions []string

	if spot.Type == domain.SpotTypePaid {
		restrictions = append(restrictions, "Paid parking zone")
	}

	if strings.Contains(spot.Restrictions, domain.RestrictionWeekday) &&
		weekday >= time.Monday && weekday <= time.Friday &&
		hour >= weekdayRestrictionStart && hour < weekdayRestrictionEnd {
		canPark = false
		restrictions = append(restrictions, "No parking during weekday business hours (8am-6pm)")
	}

	if spot.Type == domain.SpotTypeResident {
		canPark = false
		restrictions = append(restrictions, "Resident parking only")
	}

	if spot.Type == domain.SpotTypeLoading && hour >= loadingZoneStart && hour < loadingZoneEnd {
		canPark = false
		restrictions = append(restrictions, "Loading zone during business hours (7am-7pm)")
	}

	var message string
	if canPark {
		message = "Yes, you can park here!"
		if len(restrictions) > 0 {
			message += " Note: " + strings.Join(restrictions, ", ")
		}
	} else {
		message = "No, you cannot park here. " + strings.Join(restrictions, ", ")
	}

	return domain.Verdict{
		CanPark:      canPark,
		Message:      message,
		Restrictions: restrictions,
	}
}

// CheckResult is a location check outcome. Nearest is nil when no spot
// was found within the radius.
type CheckResult struct {
	Verdict     domain.Verdict
	Nearest     *domain.NearbySpot
	NearbyCount int
}

// RulesService composes the spot store, the nearby-spot resolver and the
// rule evaluator into a single location check.
type RulesService struct {
	repo     domain.DataRepository
	loc      *time.Location
	radiusKm float64
}

// NewRulesService creates a rules service. The location fixes which time
// zone query instants are evaluated in; a nil location means UTC.
func NewRulesService(repo domain.DataRepository, loc *time.Location, radiusKm float64) *RulesService {
	if loc == nil {
		loc = time.UTC
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return &RulesService{repo: repo, loc: loc, radiusKm: radiusKm}
}

// CheckLocation resolves the spots near (lat, lon) and evaluates the
// closest one at the given instant. An empty resolver result is not an
// error: it yields a negative verdict with NoDataMessage.
func (s *RulesService) CheckLocation(ctx context.Context, lat, lon float64, at time.Time) (CheckResult, error) {
	spots, err := s.repo.ListSpots(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("rules: failed to load parking data: %w", err)
	}

	nearby := FindNearbySpots(lat, lon, spots, s.radiusKm)
	if len(nearby) == 0 {
		return CheckResult{
			Verdict: domain.Verdict{CanPark: false, Message: NoDataMessage},
		}, nil
	}

	closest := nearby[0]
	verdict := EvaluateSpot(closest, at.In(s.loc))

	meters := int(geoutil.RoundTo(closest.Distance*1000, 0))
	verdict.Message += fmt.Sprintf(" (%dm from nearest parking data)", meters)

	return CheckResult{
		Verdict:     verdict,
		Nearest:     &closest,
		NearbyCount: len(nearby),
	}, nil
}

// Radius returns the configured lookup radius in kilometers.
func (s *RulesService) Radius() float64 {
	return s.radiusKm
}
