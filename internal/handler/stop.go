package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CreateStopRequest is the JSON body for POST /trips/{tripID}/stops.
// order_index is optional: when omitted the stop is appended after the
// current last stop.
type CreateStopRequest struct {
	Name       string             `json:"name"`
	Country    *string            `json:"country,omitempty"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	OrderIndex *int               `json:"order_index,omitempty"`
	Latitude   *float64           `json:"latitude,omitempty"`
	Longitude  *float64           `json:"longitude,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
}

// UpdateStopRequest is the JSON body for PATCH /trips/{tripID}/stops/{stopID}.
// Every field is optional; absent fields are left unchanged. Setting
// order_index repositions the stop within the trip.
type UpdateStopRequest struct {
	Name       *string             `json:"name,omitempty"`
	Country    *string             `json:"country,omitempty"`
	StartDate  *openapi_types.Date `json:"start_date,omitempty"`
	EndDate    *openapi_types.Date `json:"end_date,omitempty"`
	OrderIndex *int                `json:"order_index,omitempty"`
	Latitude   *float64            `json:"latitude,omitempty"`
	Longitude  *float64            `json:"longitude,omitempty"`
	Notes      *string             `json:"notes,omitempty"`
}

// ReorderStopsRequest is the JSON body for PUT /trips/{tripID}/stops/reorder.
// stop_ids must be a permutation of the trip's current stop IDs.
type ReorderStopsRequest struct {
	StopIDs []uuid.UUID `json:"stop_ids"`
}

// Stop is the JSON representation of a stop in responses.
type Stop struct {
	ID         uuid.UUID          `json:"id"`
	TripID     uuid.UUID          `json:"trip_id"`
	Name       string             `json:"name"`
	Country    *string            `json:"country,omitempty"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	OrderIndex int                `json:"order_index"`
	Latitude   *float64           `json:"latitude,omitempty"`
	Longitude  *float64           `json:"longitude,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// CreateStop handles POST /trips/{tripID}/stops.
func (s *Server) CreateStop(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var body CreateStopRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	// An omitted date decodes to the zero value, which would otherwise fall
	// outside any trip's bounds and produce a misleading rejection.
	if field, ok := missingDate(body.StartDate, body.EndDate); !ok {
		writeServiceError(w, r, domain.Invalid(domain.RuleFieldInvalid, field+" is required"), "")
		return
	}

	stop := domain.Stop{
		Name:      body.Name,
		Country:   derefString(body.Country),
		StartDate: body.StartDate.Time,
		EndDate:   body.EndDate.Time,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Notes:     derefString(body.Notes),
	}

	created, err := s.stops.Create(r.Context(), userID, tripID, stop, body.OrderIndex)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusCreated, stopToResponse(created))
}

// ListStops handles GET /trips/{tripID}/stops.
// Stops are returned in itinerary order (order_index ascending), unpaged —
// the full set is what reorder payloads are built from.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	stops, err := s.stops.ListByTrip(r.Context(), userID, tripID)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, stopsToResponse(stops))
}

// GetStop handles GET /trips/{tripID}/stops/{stopID}.
func (s *Server) GetStop(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	stopID, err := pathUUID(r, "stopID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	stop, err := s.stops.GetByID(r.Context(), userID, tripID, stopID)
	if err != nil {
		writeServiceError(w, r, err, "stop not found")
		return
	}

	writeJSON(w, http.StatusOK, stopToResponse(stop))
}

// UpdateStop handles PATCH /trips/{tripID}/stops/{stopID}.
func (s *Server) UpdateStop(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	stopID, err := pathUUID(r, "stopID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var body UpdateStopRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.stops.Update(r.Context(), userID, tripID, stopID, requestToStopPatch(body))
	if err != nil {
		writeServiceError(w, r, err, "stop not found")
		return
	}

	writeJSON(w, http.StatusOK, stopToResponse(updated))
}

// DeleteStop handles DELETE /trips/{tripID}/stops/{stopID}.
func (s *Server) DeleteStop(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	stopID, err := pathUUID(r, "stopID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.stops.Delete(r.Context(), userID, tripID, stopID); err != nil {
		writeServiceError(w, r, err, "stop not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderStops handles PUT /trips/{tripID}/stops/reorder.
// Responds with the trip's stops in their new order.
func (s *Server) ReorderStops(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var body ReorderStopsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	stops, err := s.stops.Reorder(r.Context(), userID, tripID, body.StopIDs)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, stopsToResponse(stops))
}

// missingDate reports which of the two required dates, if any, was absent
// from the request body. Decoding leaves an omitted date at its zero value.
func missingDate(start, end openapi_types.Date) (string, bool) {
	switch {
	case start.Time.IsZero():
		return "start_date", false
	case end.Time.IsZero():
		return "end_date", false
	}
	return "", true
}

// --- mapping helpers --------------------------------------------------------

// requestToStopPatch converts an UpdateStopRequest into the domain patch.
func requestToStopPatch(body UpdateStopRequest) domain.StopPatch {
	patch := domain.StopPatch{
		Name:       body.Name,
		Country:    body.Country,
		OrderIndex: body.OrderIndex,
		Latitude:   body.Latitude,
		Longitude:  body.Longitude,
		Notes:      body.Notes,
	}
	if body.StartDate != nil {
		patch.StartDate = &body.StartDate.Time
	}
	if body.EndDate != nil {
		patch.EndDate = &body.EndDate.Time
	}
	return patch
}

// stopToResponse converts a domain.Stop to its JSON representation.
// Empty strings become nil pointers for optional fields (country, notes)
// so they are omitted from the response rather than sent as empty strings.
func stopToResponse(st domain.Stop) Stop {
	return Stop{
		ID:         st.ID,
		TripID:     st.TripID,
		Name:       st.Name,
		Country:    nilIfEmpty(st.Country),
		StartDate:  openapi_types.Date{Time: st.StartDate},
		EndDate:    openapi_types.Date{Time: st.EndDate},
		OrderIndex: st.OrderIndex,
		Latitude:   st.Latitude,
		Longitude:  st.Longitude,
		Notes:      nilIfEmpty(st.Notes),
		CreatedAt:  st.CreatedAt,
		UpdatedAt:  st.UpdatedAt,
	}
}

func stopsToResponse(stops []domain.Stop) []Stop {
	out := make([]Stop, len(stops))
	for i, st := range stops {
		out[i] = stopToResponse(st)
	}
	return out
}
