package domain

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per stop, with trip fields repeated
// for every stop on that trip. Trips with no stops yield one row with zero
// values for all stop fields.
type ExportRow struct {
	// Trip fields — repeated for every stop on the trip.
	TripID        string
	TripTitle     string
	TripStartDate string // "2006-01-02" formatted date
	TripEndDate   string

	// Stop fields — zero values when the trip has no stops.
	StopName      string
	StopCountry   string
	StopStartDate string
	StopEndDate   string
	OrderIndex    *int // nil when the trip has no stops
	Latitude      *float64
	Longitude     *float64
	StopNotes     string
}
