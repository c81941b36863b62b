package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck — nothing to do if the client is gone.
	json.NewEncoder(w).Encode(v)
}

// decodeJSON strictly decodes the request body into dst.
// Unknown fields are rejected so typos in payloads fail loudly instead of
// being silently ignored.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.New(name + " must be a valid UUID")
	}
	return id, nil
}

// callerID returns the authenticated user's ID placed in context by
// middleware.RequireIdentity. Reaching a handler without it means the route
// was mounted without the middleware — a wiring bug, reported as 500 by the
// caller.
func callerID(r *http.Request) (uuid.UUID, bool) {
	return middleware.UserID(r.Context())
}

// queryInt parses an optional positive integer query parameter.
// Absent or malformed values return nil, falling back to the domain default.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// derefString safely dereferences a *string, returning "" when nil.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nilIfEmpty converts an empty string to a nil pointer.
// Used when mapping domain strings to optional API response fields.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
