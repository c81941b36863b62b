package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/validate"
)

// StopService implements the business logic for Stop operations: it enforces
// ownership, runs the pure validators against the trip bounds and sibling
// stops, and applies the ordering plans — all inside one unit of work per
// request, so a rejected write performs zero mutation.
//
// The acting user's ID is an explicit argument on every method. It is never
// read from ambient state, which keeps the service testable with any number
// of simulated identities.
type StopService struct {
	uow repo.UnitOfWork
}

// NewStopService constructs a StopService on top of the given unit of work.
func NewStopService(uow repo.UnitOfWork) *StopService {
	return &StopService{uow: uow}
}

// ownedTrip loads a trip and verifies it belongs to userID. A trip owned by
// someone else is reported as ErrNotFound, indistinguishable from absent.
// When lock is true the trip row is locked for the rest of the transaction,
// serializing concurrent stop mutations against the same trip.
func ownedTrip(ctx context.Context, trips repo.TripRepo, tripID, userID uuid.UUID, lock bool) (domain.Trip, error) {
	var (
		trip domain.Trip
		err  error
	)
	if lock {
		trip, err = trips.GetByIDForUpdate(ctx, tripID)
	} else {
		trip, err = trips.GetByID(ctx, tripID)
	}
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.OwnerID != userID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

// Create validates a new stop against its trip and siblings, resolves its
// order position (shifting the tail when the requested index is taken), and
// persists it. Pass nil orderIndex to append at the end.
func (s *StopService) Create(ctx context.Context, userID, tripID uuid.UUID, stop domain.Stop, orderIndex *int) (domain.Stop, error) {
	var created domain.Stop
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		trip, err := ownedTrip(ctx, r.Trips, tripID, userID, true)
		if err != nil {
			return err
		}

		if err := validateStopFields(stop); err != nil {
			return err
		}
		if orderIndex != nil && *orderIndex < 0 {
			return domain.Invalid(domain.RuleFieldInvalid, "order_index must not be negative")
		}

		siblings, err := r.Stops.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if err := validate.StopRange(stop.StartDate, stop.EndDate, trip, siblings, uuid.Nil); err != nil {
			return err
		}
		if err := validate.Coordinates(stop.Latitude, stop.Longitude, stop.Country); err != nil {
			return err
		}

		index, shifts := planInsert(siblings, orderIndex)
		for _, u := range shifts {
			if err := r.Stops.UpdateOrderIndex(ctx, u.StopID, u.OrderIndex); err != nil {
				return err
			}
		}

		stop.TripID = tripID
		stop.OrderIndex = index
		created, err = r.Stops.Create(ctx, stop)
		return err
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single stop, scoped to a trip the user owns.
func (s *StopService) GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.Stop, error) {
	var stop domain.Stop
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := ownedTrip(ctx, r.Trips, tripID, userID, false); err != nil {
			return err
		}
		var err error
		stop, err = r.Stops.GetByID(ctx, tripID, stopID)
		return err
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.GetByID: %w", err)
	}
	return stop, nil
}

// ListByTrip returns all stops of an owned trip in itinerary order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *StopService) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Stop, error) {
	var stops []domain.Stop
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := ownedTrip(ctx, r.Trips, tripID, userID, false); err != nil {
			return err
		}
		var err error
		stops, err = r.Stops.ListByTrip(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTrip: %w", err)
	}
	if stops == nil {
		stops = []domain.Stop{}
	}
	return stops, nil
}

// Update merges a partial patch onto an existing stop, re-validates the
// result against the trip bounds and the remaining siblings, and persists
// it. A patched order_index is a single-stop reposition and is applied as a
// permutation reorder of the whole trip.
func (s *StopService) Update(ctx context.Context, userID, tripID, stopID uuid.UUID, patch domain.StopPatch) (domain.Stop, error) {
	var updated domain.Stop
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		trip, err := ownedTrip(ctx, r.Trips, tripID, userID, true)
		if err != nil {
			return err
		}

		stop, err := r.Stops.GetByID(ctx, tripID, stopID)
		if err != nil {
			return err
		}

		merged := mergeStopPatch(stop, patch)
		if err := validateStopFields(merged); err != nil {
			return err
		}
		if patch.OrderIndex != nil && *patch.OrderIndex < 0 {
			return domain.Invalid(domain.RuleFieldInvalid, "order_index must not be negative")
		}

		siblings, err := r.Stops.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if err := validate.StopRange(merged.StartDate, merged.EndDate, trip, siblings, stop.ID); err != nil {
			return err
		}
		if err := validate.Coordinates(merged.Latitude, merged.Longitude, merged.Country); err != nil {
			return err
		}

		if patch.OrderIndex != nil && *patch.OrderIndex != stop.OrderIndex {
			phase1, phase2, err := planReposition(siblings, stop.ID, *patch.OrderIndex)
			if err != nil {
				return err
			}
			if err := applyPlan(ctx, r.Stops, phase1); err != nil {
				return err
			}
			if err := applyPlan(ctx, r.Stops, phase2); err != nil {
				return err
			}
			for _, u := range phase2 {
				if u.StopID == stop.ID {
					merged.OrderIndex = u.OrderIndex
				}
			}
		} else {
			merged.OrderIndex = stop.OrderIndex
		}

		updated, err = r.Stops.Update(ctx, merged)
		return err
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a stop from an owned trip. Remaining order indices are not
// compacted — uniqueness, not contiguity, is the invariant — and removing a
// stop can never introduce a date violation, so nothing is re-validated.
func (s *StopService) Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error {
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := ownedTrip(ctx, r.Trips, tripID, userID, true); err != nil {
			return err
		}
		return r.Stops.Delete(ctx, tripID, stopID)
	})
	if err != nil {
		return fmt.Errorf("service.StopService.Delete: %w", err)
	}
	return nil
}

// Reorder applies a caller-supplied permutation of the trip's stops and
// returns the stops in their new order. The payload must cover the trip's
// current stop set exactly; anything else fails with ErrOrderConflict and
// mutates nothing.
func (s *StopService) Reorder(ctx context.Context, userID, tripID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Stop, error) {
	var reordered []domain.Stop
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := ownedTrip(ctx, r.Trips, tripID, userID, true); err != nil {
			return err
		}

		stops, err := r.Stops.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}

		phase1, phase2, err := planReorder(stops, orderedIDs)
		if err != nil {
			return err
		}
		if err := applyPlan(ctx, r.Stops, phase1); err != nil {
			return err
		}
		if err := applyPlan(ctx, r.Stops, phase2); err != nil {
			return err
		}

		reordered, err = r.Stops.ListByTrip(ctx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.StopService.Reorder: %w", err)
	}
	if reordered == nil {
		reordered = []domain.Stop{}
	}
	return reordered, nil
}

// applyPlan executes one phase of a write plan, one statement per step, in
// plan order.
func applyPlan(ctx context.Context, stops repo.StopRepo, plan []indexUpdate) error {
	for _, u := range plan {
		if err := stops.UpdateOrderIndex(ctx, u.StopID, u.OrderIndex); err != nil {
			return err
		}
	}
	return nil
}

// mergeStopPatch overlays the set fields of a patch onto a stored stop.
// OrderIndex is handled separately by Update because a position change is a
// reorder, not a field write.
func mergeStopPatch(stop domain.Stop, patch domain.StopPatch) domain.Stop {
	if patch.Name != nil {
		stop.Name = *patch.Name
	}
	if patch.Country != nil {
		stop.Country = *patch.Country
	}
	if patch.StartDate != nil {
		stop.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		stop.EndDate = *patch.EndDate
	}
	if patch.Latitude != nil {
		stop.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		stop.Longitude = patch.Longitude
	}
	if patch.Notes != nil {
		stop.Notes = *patch.Notes
	}
	return stop
}

// validateStopFields enforces the scalar field rules shared by Create and
// Update: non-empty name within length limits.
func validateStopFields(stop domain.Stop) error {
	if strings.TrimSpace(stop.Name) == "" {
		return domain.Invalid(domain.RuleFieldInvalid, "name is required")
	}
	if len(stop.Name) > 200 {
		return domain.Invalid(domain.RuleFieldInvalid, "name must be at most 200 characters")
	}
	if len(stop.Country) > 120 {
		return domain.Invalid(domain.RuleFieldInvalid, "country must be at most 120 characters")
	}
	if len(stop.Notes) > 2000 {
		return domain.Invalid(domain.RuleFieldInvalid, "notes must be at most 2000 characters")
	}
	return nil
}
