package domain

// Spot types interpreted by the rule evaluator. The set is open: a spot
// with an unknown type fires no rule and is treated as unrestricted.
const (
	SpotTypeFree     = "free"
	SpotTypePaid     = "paid"
	SpotTypeResident = "resident"
	SpotTypeLoading  = "loading"
)

// RestrictionWeekday is the only restriction tag the evaluator interprets.
// Other tag values are carried through the record untouched.
const RestrictionWeekday = "weekday"

// ParkingSpot is a single static parking-rule record keyed by location
// (WGS-84 decimal degrees). Type and Restrictions are independent fields;
// the enforcement rule is derived by re-inspecting both at query time.
type ParkingSpot struct {
	ID           int     `json:"id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Type         string  `json:"type"`
	Address      string  `json:"address,omitempty"`
	Restrictions string  `json:"restrictions,omitempty"`
}

// NearbySpot is a ParkingSpot annotated with its distance from a query
// point. Created transiently per query, never persisted.
type NearbySpot struct {
	ParkingSpot
	Distance float64 `json:"distance"` // kilometers
}

// Verdict is the computed permitted/forbidden decision for a single query.
type Verdict struct {
	CanPark      bool     `json:"canPark"`
	Message      string   `json:"message"`
	Restrictions []string `json:"restrictions"`
}

// LocationCheckRequest is the body of a parking-location check. Latitude
// and longitude are pointers so that a present zero coordinate can be told
// apart from an absent field.
type LocationCheckRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Datetime  string   `json:"datetime,omitempty"`
}

// Location echoes the query coordinates back to the client.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearestSpotInfo is the nearest-spot metadata returned with a verdict.
// Distance is rounded to whole meters for display.
type NearestSpotInfo struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Distance int    `json:"distance"`
	Address  string `json:"address"`
}

// LocationCheckResponse is the wire shape of a location check result.
// Location, NearestSpot and Restrictions are omitted when no spot was
// found within the query radius.
type LocationCheckResponse struct {
	CanPark      bool             `json:"canPark"`
	Message      string           `json:"message"`
	Location     *Location        `json:"location,omitempty"`
	NearestSpot  *NearestSpotInfo `json:"nearestSpot,omitempty"`
	NearbyCount  int              `json:"nearbyCount"`
	Restrictions []string         `json:"restrictions,omitempty"`
}
