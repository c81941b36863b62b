package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// fakeUOW runs the unit-of-work function directly against in-memory repos.
// There is no rollback: tests that assert "nothing was written" rely on the
// services validating before their first write, which is exactly the
// behavior under test.
type fakeUOW struct {
	repos repo.Repos
}

var _ repo.UnitOfWork = (*fakeUOW)(nil)

func (f *fakeUOW) WithinTx(_ context.Context, fn func(r repo.Repos) error) error {
	return fn(f.repos)
}

// memTripRepo is an in-memory TripRepo.
type memTripRepo struct {
	trips map[uuid.UUID]domain.Trip
}

var _ repo.TripRepo = (*memTripRepo)(nil)

func newMemTripRepo(trips ...domain.Trip) *memTripRepo {
	m := &memTripRepo{trips: make(map[uuid.UUID]domain.Trip, len(trips))}
	for _, t := range trips {
		m.trips[t.ID] = t
	}
	return m
}

func (m *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	m.trips[trip.ID] = trip
	return trip, nil
}

func (m *memTripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, ok := m.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

func (m *memTripRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *memTripRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	var out []domain.Trip
	for _, t := range m.trips {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *memTripRepo) ListByOwnerPaged(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all, err := m.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	offset := p.Offset()
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memTripRepo) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	if _, ok := m.trips[trip.ID]; !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	m.trips[trip.ID] = trip
	return trip, nil
}

func (m *memTripRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

// memStopRepo is an in-memory StopRepo that rejects any write putting two
// stops of one trip on the same order index, mirroring the eagerly-checked
// unique constraint in Postgres. Ordering plans that would only be valid
// under a deferred check fail here too.
type memStopRepo struct {
	stops map[uuid.UUID]domain.Stop
}

var _ repo.StopRepo = (*memStopRepo)(nil)

func newMemStopRepo(stops ...domain.Stop) *memStopRepo {
	m := &memStopRepo{stops: make(map[uuid.UUID]domain.Stop, len(stops))}
	for _, s := range stops {
		m.stops[s.ID] = s
	}
	return m
}

func (m *memStopRepo) checkIndexFree(tripID uuid.UUID, orderIndex int, excludeID uuid.UUID) error {
	for _, s := range m.stops {
		if s.TripID == tripID && s.OrderIndex == orderIndex && s.ID != excludeID {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "uq_stops_trip_id_order_index")
		}
	}
	return nil
}

func (m *memStopRepo) Create(_ context.Context, stop domain.Stop) (domain.Stop, error) {
	if err := m.checkIndexFree(stop.TripID, stop.OrderIndex, uuid.Nil); err != nil {
		return domain.Stop{}, err
	}
	if stop.ID == uuid.Nil {
		stop.ID = uuid.New()
	}
	m.stops[stop.ID] = stop
	return stop, nil
}

func (m *memStopRepo) GetByID(_ context.Context, tripID, stopID uuid.UUID) (domain.Stop, error) {
	stop, ok := m.stops[stopID]
	if !ok || stop.TripID != tripID {
		return domain.Stop{}, domain.ErrNotFound
	}
	return stop, nil
}

func (m *memStopRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	var out []domain.Stop
	for _, s := range m.stops {
		if s.TripID == tripID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memStopRepo) Update(_ context.Context, stop domain.Stop) (domain.Stop, error) {
	existing, ok := m.stops[stop.ID]
	if !ok || existing.TripID != stop.TripID {
		return domain.Stop{}, domain.ErrNotFound
	}
	if err := m.checkIndexFree(stop.TripID, stop.OrderIndex, stop.ID); err != nil {
		return domain.Stop{}, err
	}
	m.stops[stop.ID] = stop
	return stop, nil
}

func (m *memStopRepo) UpdateOrderIndex(_ context.Context, stopID uuid.UUID, orderIndex int) error {
	stop, ok := m.stops[stopID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := m.checkIndexFree(stop.TripID, orderIndex, stopID); err != nil {
		return err
	}
	stop.OrderIndex = orderIndex
	m.stops[stopID] = stop
	return nil
}

func (m *memStopRepo) Delete(_ context.Context, tripID, stopID uuid.UUID) error {
	stop, ok := m.stops[stopID]
	if !ok || stop.TripID != tripID {
		return domain.ErrNotFound
	}
	delete(m.stops, stopID)
	return nil
}

// requireRule asserts that err carries a ValidationError with the given rule.
func requireRule(t *testing.T, err error, rule domain.ValidationRule) {
	t.Helper()
	require.Error(t, err)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, rule, verr.Rule)
	require.True(t, errors.Is(err, domain.ErrValidation))
}
