package geoutil

import (
	"math"
	"testing"
)

func TestHaversineIdentity(t *testing.T) {
	points := []struct {
		name     string
		lat, lon float64
	}{
		{"origin", 0, 0},
		{"san francisco", 37.7749, -122.4194},
		{"southern hemisphere", -33.8688, 151.2093},
	}

	for _, p := range points {
		t.Run(p.name, func(t *testing.T) {
			if got := Haversine(p.lat, p.lon, p.lat, p.lon); got != 0 {
				t.Fatalf("Haversine(P,P) = %v; want 0", got)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"nearby", 37.7749, -122.4194, 37.7849, -122.4094},
		{"antimeridian", 52.0, 179.9, 52.0, -179.9},
		{"hemispheres", 40.7128, -74.0060, -33.8688, 151.2093},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ab := Haversine(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			ba := Haversine(tc.lat2, tc.lon2, tc.lat1, tc.lon1)
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("Haversine(A,B) = %v, Haversine(B,A) = %v; want equal", ab, ba)
			}
		})
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Market St to Mission St sample spots, roughly 1.42 km apart.
	got := Haversine(37.7749, -122.4194, 37.7849, -122.4094)
	if got < 1.40 || got > 1.44 {
		t.Fatalf("Haversine = %v km; want ~1.42 km", got)
	}
}

func TestHaversinePropagatesNaN(t *testing.T) {
	if got := Haversine(math.NaN(), 0, 0, 0); !math.IsNaN(got) {
		t.Fatalf("Haversine(NaN,...) = %v; want NaN", got)
	}
}

func TestRoundTo(t *testing.T) {
	cases := []struct {
		value    float64
		places   int
		expected float64
	}{
		{1.23456, 2, 1.23},
		{1.2351, 2, 1.24},
		{0.0999, 0, 0},
		{141.7, 0, 142},
	}

	for _, tc := range cases {
		if got := RoundTo(tc.value, tc.places); got != tc.expected {
			t.Fatalf("RoundTo(%v, %d) = %v; want %v", tc.value, tc.places, got, tc.expected)
		}
	}
}
