// Package domain contains the core data types for the Trip Planner application.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (validate, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a planned trip: a titled, closed date interval owned by
// exactly one user. A trip is the top-level aggregate; stops belong to a trip
// and are deleted with it.
//
// StartDate and EndDate are date-only values (midnight UTC) and the interval
// is inclusive on both ends. StartDate ≤ EndDate always holds for a persisted
// trip.
type Trip struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
