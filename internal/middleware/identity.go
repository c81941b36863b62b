package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// UserIDHeader carries the authenticated caller's ID. The authentication
// layer in front of this service (gateway or auth proxy) validates the
// session and injects this header; the service itself never issues or
// verifies credentials.
const UserIDHeader = "X-User-ID"

// ctxKey is unexported so no other package can forge the context value.
type ctxKey struct{}

var userIDKey ctxKey

// RequireIdentity rejects requests without a well-formed X-User-ID header
// with 401 and otherwise stores the caller's UUID in the request context.
// Handlers read it back with UserID and pass it explicitly into every
// service call — the core never reaches into ambient state for identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			//nolint:errcheck — nothing to do if the client is gone.
			w.Write([]byte(`{"error":{"code":"unauthorized","message":"missing or invalid ` + UserIDHeader + ` header"}}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

// UserID returns the caller ID stored by RequireIdentity.
// The second return is false when the middleware did not run for this request.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
