package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/handler"
)

// mockStopServicer is a test double for handler.StopServicer.
// Set only the method fields your test needs.
type mockStopServicer struct {
	create     func(ctx context.Context, userID, tripID uuid.UUID, stop domain.Stop, orderIndex *int) (domain.Stop, error)
	getByID    func(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.Stop, error)
	listByTrip func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Stop, error)
	update     func(ctx context.Context, userID, tripID, stopID uuid.UUID, patch domain.StopPatch) (domain.Stop, error)
	delete     func(ctx context.Context, userID, tripID, stopID uuid.UUID) error
	reorder    func(ctx context.Context, userID, tripID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Stop, error)
}

func (m *mockStopServicer) Create(ctx context.Context, userID, tripID uuid.UUID, stop domain.Stop, orderIndex *int) (domain.Stop, error) {
	return m.create(ctx, userID, tripID, stop, orderIndex)
}
func (m *mockStopServicer) GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.Stop, error) {
	return m.getByID(ctx, userID, tripID, stopID)
}
func (m *mockStopServicer) ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Stop, error) {
	return m.listByTrip(ctx, userID, tripID)
}
func (m *mockStopServicer) Update(ctx context.Context, userID, tripID, stopID uuid.UUID, patch domain.StopPatch) (domain.Stop, error) {
	return m.update(ctx, userID, tripID, stopID, patch)
}
func (m *mockStopServicer) Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error {
	return m.delete(ctx, userID, tripID, stopID)
}
func (m *mockStopServicer) Reorder(ctx context.Context, userID, tripID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Stop, error) {
	return m.reorder(ctx, userID, tripID, orderedIDs)
}

var _ handler.StopServicer = (*mockStopServicer)(nil)

func newStopHandler(svc handler.StopServicer) http.Handler {
	return handler.NewServer(nil, svc, nil).Routes()
}

func stopFixture(tripID uuid.UUID, orderIndex int) domain.Stop {
	return domain.Stop{
		ID:         uuid.New(),
		TripID:     tripID,
		Name:       "Tokyo",
		Country:    "Japan",
		StartDate:  time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2030, 7, 5, 0, 0, 0, 0, time.UTC),
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func stopsPath(tripID uuid.UUID) string {
	return fmt.Sprintf("/trips/%s/stops", tripID)
}

// ---- POST /trips/{tripID}/stops --------------------------------------------

func TestCreateStop_201(t *testing.T) {
	tripID := uuid.New()
	fixture := stopFixture(tripID, 2)
	svc := &mockStopServicer{
		create: func(_ context.Context, _, gotTripID uuid.UUID, stop domain.Stop, orderIndex *int) (domain.Stop, error) {
			assert.Equal(t, tripID, gotTripID)
			assert.Equal(t, "Tokyo", stop.Name)
			assert.Equal(t, "Japan", stop.Country)
			require.NotNil(t, orderIndex)
			assert.Equal(t, 2, *orderIndex)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":        "Tokyo",
		"country":     "Japan",
		"start_date":  "2030-07-01",
		"end_date":    "2030-07-05",
		"order_index": 2,
	})

	req := authedRequest(t, http.MethodPost, stopsPath(tripID), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp handler.Stop
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, 2, resp.OrderIndex)
}

func TestCreateStop_201_NoOrderIndex(t *testing.T) {
	tripID := uuid.New()
	svc := &mockStopServicer{
		create: func(_ context.Context, _, _ uuid.UUID, _ domain.Stop, orderIndex *int) (domain.Stop, error) {
			assert.Nil(t, orderIndex, "omitted order_index must arrive as nil")
			return stopFixture(tripID, 0), nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":       "Tokyo",
		"start_date": "2030-07-01",
		"end_date":   "2030-07-05",
	})

	req := authedRequest(t, http.MethodPost, stopsPath(tripID), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateStop_422_PlaceholderCoordinates(t *testing.T) {
	tripID := uuid.New()
	svc := &mockStopServicer{
		create: func(_ context.Context, _, _ uuid.UUID, _ domain.Stop, _ *int) (domain.Stop, error) {
			return domain.Stop{}, domain.Invalid(domain.RulePlaceholderCoordinate,
				"coordinates (0, 0) look like an unset placeholder")
		},
	}

	body := jsonBody(t, map[string]any{
		"name":       "Null Island",
		"start_date": "2030-07-01",
		"end_date":   "2030-07-05",
		"latitude":   0.0,
		"longitude":  0.0,
	})

	req := authedRequest(t, http.MethodPost, stopsPath(tripID), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	detail := decodeError(t, rec)
	assert.Equal(t, "validation_error", detail.Code)
	assert.Equal(t, string(domain.RulePlaceholderCoordinate), detail.Rule)
}

func TestCreateStop_422_MissingDates(t *testing.T) {
	svc := &mockStopServicer{
		create: func(_ context.Context, _, _ uuid.UUID, _ domain.Stop, _ *int) (domain.Stop, error) {
			t.Fatal("service must not be called when a required date is missing")
			return domain.Stop{}, nil
		},
	}

	for field, body := range map[string]map[string]any{
		"start_date": {"name": "Tokyo", "end_date": "2030-07-05"},
		"end_date":   {"name": "Tokyo", "start_date": "2030-07-01"},
	} {
		t.Run(field, func(t *testing.T) {
			req := authedRequest(t, http.MethodPost, stopsPath(uuid.New()), jsonBody(t, body))
			rec := httptest.NewRecorder()

			newStopHandler(svc).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			detail := decodeError(t, rec)
			assert.Equal(t, "validation_error", detail.Code)
			assert.Equal(t, string(domain.RuleFieldInvalid), detail.Rule)
			assert.Contains(t, detail.Message, field+" is required")
		})
	}
}

func TestCreateStop_404_TripNotFound(t *testing.T) {
	svc := &mockStopServicer{
		create: func(_ context.Context, _, _ uuid.UUID, _ domain.Stop, _ *int) (domain.Stop, error) {
			return domain.Stop{}, domain.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{
		"name":       "Tokyo",
		"start_date": "2030-07-01",
		"end_date":   "2030-07-05",
	})

	req := authedRequest(t, http.MethodPost, stopsPath(uuid.New()), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- GET /trips/{tripID}/stops ---------------------------------------------

func TestListStops_200(t *testing.T) {
	tripID := uuid.New()
	first := stopFixture(tripID, 0)
	second := stopFixture(tripID, 1)
	second.Name = "Kyoto"
	svc := &mockStopServicer{
		listByTrip: func(_ context.Context, _, gotTripID uuid.UUID) ([]domain.Stop, error) {
			assert.Equal(t, tripID, gotTripID)
			return []domain.Stop{first, second}, nil
		},
	}

	req := authedRequest(t, http.MethodGet, stopsPath(tripID), nil)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []handler.Stop
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Tokyo", resp[0].Name)
	assert.Equal(t, "Kyoto", resp[1].Name)
}

func TestListStops_200_Empty(t *testing.T) {
	svc := &mockStopServicer{
		listByTrip: func(_ context.Context, _, _ uuid.UUID) ([]domain.Stop, error) {
			return []domain.Stop{}, nil
		},
	}

	req := authedRequest(t, http.MethodGet, stopsPath(uuid.New()), nil)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

// ---- GET /trips/{tripID}/stops/{stopID} ------------------------------------

func TestGetStop_200(t *testing.T) {
	tripID := uuid.New()
	fixture := stopFixture(tripID, 0)
	svc := &mockStopServicer{
		getByID: func(_ context.Context, _, _, stopID uuid.UUID) (domain.Stop, error) {
			assert.Equal(t, fixture.ID, stopID)
			return fixture, nil
		},
	}

	req := authedRequest(t, http.MethodGet, stopsPath(tripID)+"/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp handler.Stop
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestGetStop_404(t *testing.T) {
	svc := &mockStopServicer{
		getByID: func(_ context.Context, _, _, _ uuid.UUID) (domain.Stop, error) {
			return domain.Stop{}, domain.ErrNotFound
		},
	}

	req := authedRequest(t, http.MethodGet, stopsPath(uuid.New())+"/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- PATCH /trips/{tripID}/stops/{stopID} ----------------------------------

func TestUpdateStop_200(t *testing.T) {
	tripID := uuid.New()
	fixture := stopFixture(tripID, 0)
	fixture.Name = "Tokyo (Shinjuku)"
	svc := &mockStopServicer{
		update: func(_ context.Context, _, _, stopID uuid.UUID, patch domain.StopPatch) (domain.Stop, error) {
			assert.Equal(t, fixture.ID, stopID)
			require.NotNil(t, patch.Name)
			assert.Equal(t, "Tokyo (Shinjuku)", *patch.Name)
			assert.Nil(t, patch.StartDate, "absent fields must stay nil in the patch")
			assert.Nil(t, patch.OrderIndex)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"name": "Tokyo (Shinjuku)"})

	req := authedRequest(t, http.MethodPatch, stopsPath(tripID)+"/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp handler.Stop
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Tokyo (Shinjuku)", resp.Name)
}

func TestUpdateStop_200_Reposition(t *testing.T) {
	tripID := uuid.New()
	fixture := stopFixture(tripID, 0)
	svc := &mockStopServicer{
		update: func(_ context.Context, _, _, _ uuid.UUID, patch domain.StopPatch) (domain.Stop, error) {
			require.NotNil(t, patch.OrderIndex)
			assert.Equal(t, 0, *patch.OrderIndex)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"order_index": 0})

	req := authedRequest(t, http.MethodPatch, stopsPath(tripID)+"/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStop_422_SiblingOverlap(t *testing.T) {
	tripID := uuid.New()
	svc := &mockStopServicer{
		update: func(_ context.Context, _, _, _ uuid.UUID, _ domain.StopPatch) (domain.Stop, error) {
			return domain.Stop{}, domain.Invalid(domain.RuleSiblingOverlap,
				`dates overlap stop "Kyoto" by 3 days`)
		},
	}

	body := jsonBody(t, map[string]any{"end_date": "2030-07-08"})

	req := authedRequest(t, http.MethodPatch, stopsPath(tripID)+"/"+uuid.New().String(), body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(domain.RuleSiblingOverlap), decodeError(t, rec).Rule)
}

// ---- DELETE /trips/{tripID}/stops/{stopID} ---------------------------------

func TestDeleteStop_204(t *testing.T) {
	svc := &mockStopServicer{
		delete: func(_ context.Context, _, _, _ uuid.UUID) error { return nil },
	}

	req := authedRequest(t, http.MethodDelete, stopsPath(uuid.New())+"/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteStop_404(t *testing.T) {
	svc := &mockStopServicer{
		delete: func(_ context.Context, _, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}

	req := authedRequest(t, http.MethodDelete, stopsPath(uuid.New())+"/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- PUT /trips/{tripID}/stops/reorder ---------------------------------------

func TestReorderStops_200(t *testing.T) {
	tripID := uuid.New()
	first := stopFixture(tripID, 0)
	second := stopFixture(tripID, 1)
	second.Name = "Kyoto"
	svc := &mockStopServicer{
		reorder: func(_ context.Context, _, gotTripID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Stop, error) {
			assert.Equal(t, tripID, gotTripID)
			assert.Equal(t, []uuid.UUID{second.ID, first.ID}, orderedIDs)
			second.OrderIndex, first.OrderIndex = 0, 1
			return []domain.Stop{second, first}, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"stop_ids": []string{second.ID.String(), first.ID.String()},
	})

	req := authedRequest(t, http.MethodPut, stopsPath(tripID)+"/reorder", body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []handler.Stop
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Kyoto", resp[0].Name)
	assert.Equal(t, 0, resp[0].OrderIndex)
}

func TestReorderStops_409_Conflict(t *testing.T) {
	svc := &mockStopServicer{
		reorder: func(_ context.Context, _, _ uuid.UUID, _ []uuid.UUID) ([]domain.Stop, error) {
			return nil, fmt.Errorf("service.StopService.Reorder: %w: missing stop IDs", domain.ErrOrderConflict)
		},
	}

	body := jsonBody(t, map[string]any{
		"stop_ids": []string{uuid.NewString()},
	})

	req := authedRequest(t, http.MethodPut, stopsPath(uuid.New())+"/reorder", body)
	rec := httptest.NewRecorder()

	newStopHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	detail := decodeError(t, rec)
	assert.Equal(t, "order_conflict", detail.Code)
	assert.Contains(t, detail.Message, "missing stop IDs")
}
