package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// StopRepo defines the persistence operations for Stops.
// All single-record reads and deletes are scoped by tripID so a stop can
// never be reached through a trip it does not belong to.
//
// The unique constraint on (trip_id, order_index) is enforced eagerly by
// Postgres on every write. The service layer's ordering plans (descending
// shifts, two-phase reorder) are built so that no statement ever collides;
// a constraint violation surfacing from this repo is a bug, not user error.
type StopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// GetByID retrieves a single stop by its UUID, scoped to the given tripID.
	// Returns domain.ErrNotFound if no stop with that ID exists under that trip.
	GetByID(ctx context.Context, tripID, stopID uuid.UUID) (domain.Stop, error)

	// ListByTrip returns all stops for a trip ordered by order_index ascending.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)

	// Update overwrites the mutable fields of a stop and returns the updated
	// record. Returns domain.ErrNotFound if no stop with that ID exists under
	// that trip.
	Update(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// UpdateOrderIndex sets only the order_index of a single stop.
	// Used by the ordering plans, where each step must be its own statement
	// executed in plan order. Returns domain.ErrNotFound if the stop does
	// not exist.
	UpdateOrderIndex(ctx context.Context, stopID uuid.UUID, orderIndex int) error

	// Delete removes a stop by ID, scoped to the given tripID. Remaining
	// indices are not compacted; gaps are fine.
	// Returns domain.ErrNotFound if no stop with that ID exists under that trip.
	Delete(ctx context.Context, tripID, stopID uuid.UUID) error
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool or a pgx.Tx from the unit of work;
// in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, trip_id, name, country, start_date, end_date, order_index,
		latitude, longitude, notes, created_at, updated_at`

func (r *pgStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		INSERT INTO stops (trip_id, name, country, start_date, end_date, order_index,
		                   latitude, longitude, notes)
		VALUES (@trip_id, @name, @country, @start_date, @end_date, @order_index,
		        @latitude, @longitude, @notes)
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"trip_id":     stop.TripID,
		"name":        stop.Name,
		"country":     stop.Country,
		"start_date":  stop.StartDate,
		"end_date":    stop.EndDate,
		"order_index": stop.OrderIndex,
		"latitude":    stop.Latitude, // nil becomes NULL
		"longitude":   stop.Longitude,
		"notes":       stop.Notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanStop(row)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) GetByID(ctx context.Context, tripID, stopID uuid.UUID) (domain.Stop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID})
	result, err := scanStop(row)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTrip returns the trip's stops in itinerary order.
func (r *pgStopRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE trip_id = @trip_id
		ORDER BY order_index`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		st, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByTrip: scan: %w", err)
		}
		stops = append(stops, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByTrip: rows: %w", err)
	}

	return stops, nil
}

func (r *pgStopRepo) Update(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		UPDATE stops
		SET name        = @name,
		    country     = @country,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    order_index = @order_index,
		    latitude    = @latitude,
		    longitude   = @longitude,
		    notes       = @notes,
		    updated_at  = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"id":          stop.ID,
		"trip_id":     stop.TripID,
		"name":        stop.Name,
		"country":     stop.Country,
		"start_date":  stop.StartDate,
		"end_date":    stop.EndDate,
		"order_index": stop.OrderIndex,
		"latitude":    stop.Latitude,
		"longitude":   stop.Longitude,
		"notes":       stop.Notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanStop(row)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}
	return result, nil
}

// UpdateOrderIndex moves a single stop to a new order position.
func (r *pgStopRepo) UpdateOrderIndex(ctx context.Context, stopID uuid.UUID, orderIndex int) error {
	const q = `
		UPDATE stops
		SET order_index = @order_index,
		    updated_at  = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "order_index": orderIndex})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.UpdateOrderIndex: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StopRepo.UpdateOrderIndex: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgStopRepo) Delete(ctx context.Context, tripID, stopID uuid.UUID) error {
	const q = `DELETE FROM stops WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StopRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanStop maps a single database row into a domain.Stop.
// It handles the UUID, date, and nullable coordinate conversions.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		st     domain.Stop
		id     pgtype.UUID
		tripID pgtype.UUID
		sdRaw  pgtype.Date
		edRaw  pgtype.Date
		lat    pgtype.Float8
		lon    pgtype.Float8
	)

	err := s.Scan(&id, &tripID, &st.Name, &st.Country, &sdRaw, &edRaw, &st.OrderIndex,
		&lat, &lon, &st.Notes, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.TripID = uuid.UUID(tripID.Bytes)
	st.StartDate = sdRaw.Time
	st.EndDate = edRaw.Time
	if lat.Valid {
		v := lat.Float64
		st.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		st.Longitude = &v
	}

	return st, nil
}
