package validate

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// maxOverlapDays is the transition allowance: two sibling stops may share at
// most this many inclusive days, modeling the travel-day handoff where one
// stop ends the day the next begins.
const maxOverlapDays = 1

// OverlapDays returns the inclusive-day overlap of two closed date intervals,
// or 0 when they do not intersect. All inputs are date-only values (midnight
// UTC); a one-point intersection counts as one day.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if start.After(end) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// StopRange checks a candidate stop interval against the owning trip's bounds
// and its sibling stops.
//
//   - Inverted intervals (start after end) are rejected.
//   - The interval must be fully contained in the trip's interval.
//   - Against every sibling except excludeID, the inclusive-day overlap must
//     not exceed one day. Exactly one day — e.g. one stop ends the day
//     another begins — is the transition allowance and is accepted.
//
// Pass uuid.Nil as excludeID when creating a new stop.
func StopRange(start, end time.Time, trip domain.Trip, siblings []domain.Stop, excludeID uuid.UUID) error {
	if start.After(end) {
		return domain.Invalid(domain.RuleInvertedRange,
			"end_date must be on or after start_date")
	}
	if start.Before(trip.StartDate) || end.After(trip.EndDate) {
		return domain.Invalid(domain.RuleOutsideTripBounds,
			fmt.Sprintf("stop dates must be within trip dates (%s to %s)",
				trip.StartDate.Format("2006-01-02"), trip.EndDate.Format("2006-01-02")))
	}

	for _, sib := range siblings {
		if sib.ID == excludeID {
			continue
		}
		days := OverlapDays(start, end, sib.StartDate, sib.EndDate)
		if days > maxOverlapDays {
			return domain.Invalid(domain.RuleSiblingOverlap,
				fmt.Sprintf("stop dates overlap with %q by %d days; at most %d day is allowed for transitions",
					sib.Name, days, maxOverlapDays))
		}
	}
	return nil
}

// TripDates checks a trip's own interval at creation or update time.
// The start must not be strictly before today and the end must not precede
// the start. Today is passed in by the caller so the rule stays a pure
// function of its inputs.
func TripDates(start, end, today time.Time) error {
	if start.Before(today) {
		return domain.Invalid(domain.RuleFieldInvalid,
			fmt.Sprintf("start_date %s cannot be in the past", start.Format("2006-01-02")))
	}
	if end.Before(start) {
		return domain.Invalid(domain.RuleInvertedRange,
			"end_date must be on or after start_date")
	}
	return nil
}
