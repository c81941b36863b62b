// Package handler implements the HTTP handlers for the Trip Planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, stop.go, export.go) but all share the same
// Server struct so they can access its dependencies.
//
// Handlers do three things only: decode and sanity-check the request, call
// the service with the caller's identity passed explicitly, and map the
// result (or typed error) onto the wire. All business rules live below.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/middleware"
	"github.com/pkordes/trip-planner/backend/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, userID, tripID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// StopServicer defines the business operations the stop handlers depend on.
type StopServicer interface {
	Create(ctx context.Context, userID, tripID uuid.UUID, stop domain.Stop, orderIndex *int) (domain.Stop, error)
	GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.Stop, error)
	ListByTrip(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Stop, error)
	Update(ctx context.Context, userID, tripID, stopID uuid.UUID, patch domain.StopPatch) (domain.Stop, error)
	Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error
	Reorder(ctx context.Context, userID, tripID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Stop, error)
}

// ExportServicer defines the export operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies for all API endpoints.
// Wire it in main.go via NewServer(...).Routes().
type Server struct {
	trips  TripServicer
	stops  StopServicer
	export ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, stops StopServicer, export ExportServicer) *Server {
	return &Server{trips: trips, stops: stops, export: export}
}

// Routes returns the chi router for the full API surface.
// Everything under /trips and /export requires an identity header; the
// health check and the OpenAPI document do not.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)

				r.Route("/stops", func(r chi.Router) {
					r.Post("/", s.CreateStop)
					r.Get("/", s.ListStops)
					r.Put("/reorder", s.ReorderStops)
					r.Get("/{stopID}", s.GetStop)
					r.Patch("/{stopID}", s.UpdateStop)
					r.Delete("/{stopID}", s.DeleteStop)
				})
			})
		})

		r.Get("/export", s.GetExport)
	})

	return r
}

// serveOpenAPI returns the embedded OpenAPI document.
// Serving it from the binary means the spec and the running code are always
// in sync.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	//nolint:errcheck
	w.Write(spec.OpenAPI)
}
