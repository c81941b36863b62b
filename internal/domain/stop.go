package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stop represents a single destination within a trip.
//
// OrderIndex defines the stop's position in the trip's itinerary. It is
// unique within the trip but not required to be contiguous — deleting a stop
// leaves a gap. StartDate/EndDate form a closed date interval contained in
// the trip's interval; adjacent stops may overlap by at most one day (the
// travel-day handoff).
//
// Latitude and Longitude are either both set or both nil.
type Stop struct {
	ID         uuid.UUID
	TripID     uuid.UUID
	Name       string
	Country    string
	StartDate  time.Time
	EndDate    time.Time
	OrderIndex int
	Latitude   *float64
	Longitude  *float64
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StopPatch carries a partial update to a stop. Nil fields are left
// unchanged; the service merges the patch onto the stored stop before
// re-validating the result against its siblings.
type StopPatch struct {
	Name       *string
	Country    *string
	StartDate  *time.Time
	EndDate    *time.Time
	OrderIndex *int
	Latitude   *float64
	Longitude  *float64
	Notes      *string
}
