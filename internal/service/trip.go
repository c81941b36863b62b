// Package service contains the business logic for the Trip Planner API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls inside units of work. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/validate"
)

// TripService implements business logic for Trip operations. All operations
// are scoped to the acting user: trips owned by someone else behave exactly
// like trips that do not exist.
type TripService struct {
	uow repo.UnitOfWork
	now func() time.Time
}

// NewTripService constructs a TripService on top of the given unit of work.
func NewTripService(uow repo.UnitOfWork) *TripService {
	return &TripService{uow: uow, now: time.Now}
}

// today truncates the current time to a date-only value at midnight UTC,
// matching how trip and stop dates are stored.
func (s *TripService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create validates and persists a new trip owned by userID.
func (s *TripService) Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	var created domain.Trip
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		if err := validateTripTitle(trip.Title); err != nil {
			return err
		}
		if err := validate.TripDates(trip.StartDate, trip.EndDate, s.today()); err != nil {
			return err
		}

		trip.OwnerID = userID
		var err error
		created, err = r.Trips.Create(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single trip owned by userID.
func (s *TripService) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		var err error
		trip, err = ownedTrip(ctx, r.Trips, tripID, userID, false)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns one page of the user's trips plus the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var (
		trips []domain.Trip
		total int64
	)
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		var err error
		trips, total, err = r.Trips.ListByOwnerPaged(ctx, userID, p)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update validates and persists changes to an existing trip. Shrinking the
// trip's date interval is rejected while any stop would fall outside the new
// bounds — stop containment must hold after every committed operation.
func (s *TripService) Update(ctx context.Context, userID, tripID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	var updated domain.Trip
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		existing, err := ownedTrip(ctx, r.Trips, tripID, userID, true)
		if err != nil {
			return err
		}

		if err := validateTripTitle(trip.Title); err != nil {
			return err
		}
		if err := validate.TripDates(trip.StartDate, trip.EndDate, s.today()); err != nil {
			return err
		}

		stops, err := r.Stops.ListByTrip(ctx, tripID)
		if err != nil {
			return err
		}
		for _, st := range stops {
			if st.StartDate.Before(trip.StartDate) || st.EndDate.After(trip.EndDate) {
				return domain.Invalid(domain.RuleOutsideTripBounds,
					fmt.Sprintf("stop %q (%s to %s) would fall outside the new trip dates",
						st.Name, st.StartDate.Format("2006-01-02"), st.EndDate.Format("2006-01-02")))
			}
		}

		trip.ID = existing.ID
		trip.OwnerID = existing.OwnerID
		updated, err = r.Trips.Update(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a trip owned by userID; its stops cascade with it.
func (s *TripService) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := ownedTrip(ctx, r.Trips, tripID, userID, true); err != nil {
			return err
		}
		return r.Trips.Delete(ctx, tripID)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// validateTripTitle rejects empty (after trimming) or overlong titles.
func validateTripTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.Invalid(domain.RuleFieldInvalid, "title is required")
	}
	if len(title) > 200 {
		return domain.Invalid(domain.RuleFieldInvalid, "title must be at most 200 characters")
	}
	return nil
}
