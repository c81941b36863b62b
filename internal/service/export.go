package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ExportService assembles a full flat export of the acting user's trips and
// stops: one row per stop with trip fields repeated, and one all-trip-fields
// row for trips without stops.
type ExportService struct {
	uow repo.UnitOfWork
}

// NewExportService constructs an ExportService on top of the given unit of work.
func NewExportService(uow repo.UnitOfWork) *ExportService {
	return &ExportService{uow: uow}
}

// Export returns the flat rows for all of userID's trips in trip order
// (start_date descending), with each trip's stops in itinerary order.
// Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}
	err := s.uow.WithinTx(ctx, func(r repo.Repos) error {
		trips, err := r.Trips.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}

		for _, trip := range trips {
			stops, err := r.Stops.ListByTrip(ctx, trip.ID)
			if err != nil {
				return err
			}

			if len(stops) == 0 {
				rows = append(rows, tripOnlyRow(trip))
				continue
			}
			for _, stop := range stops {
				rows = append(rows, stopRow(trip, stop))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return rows, nil
}

const exportDateFormat = "2006-01-02"

// tripOnlyRow builds the single row emitted for a trip with no stops.
func tripOnlyRow(trip domain.Trip) domain.ExportRow {
	return domain.ExportRow{
		TripID:        trip.ID.String(),
		TripTitle:     trip.Title,
		TripStartDate: trip.StartDate.Format(exportDateFormat),
		TripEndDate:   trip.EndDate.Format(exportDateFormat),
	}
}

// stopRow builds one row for a (trip, stop) pair.
func stopRow(trip domain.Trip, stop domain.Stop) domain.ExportRow {
	orderIndex := stop.OrderIndex
	return domain.ExportRow{
		TripID:        trip.ID.String(),
		TripTitle:     trip.Title,
		TripStartDate: trip.StartDate.Format(exportDateFormat),
		TripEndDate:   trip.EndDate.Format(exportDateFormat),
		StopName:      stop.Name,
		StopCountry:   stop.Country,
		StopStartDate: stop.StartDate.Format(exportDateFormat),
		StopEndDate:   stop.EndDate.Format(exportDateFormat),
		OrderIndex:    &orderIndex,
		Latitude:      stop.Latitude,
		Longitude:     stop.Longitude,
		StopNotes:     stop.Notes,
	}
}
