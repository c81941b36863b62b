package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// errMissingIdentity signals a handler reached without RequireIdentity having
// run — a route wiring bug, surfaced as a 500.
var errMissingIdentity = errors.New("handler: no identity in request context")

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code, the specific rule that
// rejected the request (validation failures only), and a human-readable
// message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

// writeError writes a JSON error envelope with the given status.
func writeError(w http.ResponseWriter, status int, detail ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck — nothing to do if the client is gone.
	json.NewEncoder(w).Encode(ErrorResponse{Error: detail})
}

// writeBadRequest rejects a request before it reaches the service layer
// (malformed body, bad UUID in the path).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrorDetail{Code: "bad_request", Message: message})
}

// writeServiceError maps a service error onto the wire:
// ErrNotFound → 404 with notFoundMsg, ValidationError/ErrValidation → 422
// (with the rule), ErrOrderConflict → 409, anything else → 500 (logged, not
// leaked). The handler supplies notFoundMsg because it is the layer that
// knows what was being looked up.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorDetail{Code: "not_found", Message: notFoundMsg})
	case errors.As(err, &vErr):
		writeError(w, http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "validation_error",
			Rule:    string(vErr.Rule),
			Message: vErr.Detail,
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "validation_error",
			Message: trimWrapPrefix(err.Error(), "validation error: "),
		})
	case errors.Is(err, domain.ErrOrderConflict):
		writeError(w, http.StatusConflict, ErrorDetail{
			Code:    "order_conflict",
			Message: trimWrapPrefix(err.Error(), "order conflict: "),
		})
	default:
		slog.ErrorContext(r.Context(), "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, ErrorDetail{
			Code:    "internal_error",
			Message: "internal server error",
		})
	}
}

// trimWrapPrefix extracts the human-readable part from a wrapped sentinel
// error. e.g. "service.StopService.Reorder: order conflict: missing stop
// IDs [...]" → "missing stop IDs [...]". Falls back to the full message when
// the marker is absent.
func trimWrapPrefix(msg, marker string) string {
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
