// Package handler — export.go implements GET /export.
// Returns the caller's trips and stops as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "trip_start_date", "trip_end_date",
	"stop_name", "stop_country", "stop_start_date", "stop_end_date",
	"order_index", "latitude", "longitude", "stop_notes",
}

// ExportRowJSON is the JSON representation of one export row.
type ExportRowJSON struct {
	TripID        string   `json:"trip_id"`
	TripTitle     string   `json:"trip_title"`
	TripStartDate string   `json:"trip_start_date"`
	TripEndDate   string   `json:"trip_end_date"`
	StopName      *string  `json:"stop_name,omitempty"`
	StopCountry   *string  `json:"stop_country,omitempty"`
	StopStartDate *string  `json:"stop_start_date,omitempty"`
	StopEndDate   *string  `json:"stop_end_date,omitempty"`
	OrderIndex    *int     `json:"order_index,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	StopNotes     *string  `json:"stop_notes,omitempty"`
}

// GetExport handles GET /export.
// It returns a flat table of every trip/stop combination the caller owns.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeServiceError(w, r, errMissingIdentity, "")
		return
	}

	rows, err := s.export.Export(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "not found")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSVExport(w, rows)
		return
	}
	writeJSONExport(w, rows)
}

// writeJSONExport converts domain rows to the typed JSON response.
func writeJSONExport(w http.ResponseWriter, rows []domain.ExportRow) {
	out := make([]ExportRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToJSONRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSVExport streams the rows as CSV with a header line.
func writeCSVExport(w http.ResponseWriter, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips-export.csv"`)

	cw := csv.NewWriter(w)
	//nolint:errcheck — csv errors surface in Flush below.
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(row))
	}
	cw.Flush()
}

// domainRowToJSONRow maps a domain.ExportRow to its JSON shape.
// Empty stop fields become nil pointers (omitted in JSON) so trip-only rows
// stay compact.
func domainRowToJSONRow(row domain.ExportRow) ExportRowJSON {
	return ExportRowJSON{
		TripID:        row.TripID,
		TripTitle:     row.TripTitle,
		TripStartDate: row.TripStartDate,
		TripEndDate:   row.TripEndDate,
		StopName:      nilIfEmpty(row.StopName),
		StopCountry:   nilIfEmpty(row.StopCountry),
		StopStartDate: nilIfEmpty(row.StopStartDate),
		StopEndDate:   nilIfEmpty(row.StopEndDate),
		OrderIndex:    row.OrderIndex,
		Latitude:      row.Latitude,
		Longitude:     row.Longitude,
		StopNotes:     nilIfEmpty(row.StopNotes),
	}
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil pointers are encoded as empty strings.
func domainRowToCSVRecord(row domain.ExportRow) []string {
	orderIndex := ""
	if row.OrderIndex != nil {
		orderIndex = strconv.Itoa(*row.OrderIndex)
	}
	return []string{
		row.TripID,
		row.TripTitle,
		row.TripStartDate,
		row.TripEndDate,
		row.StopName,
		row.StopCountry,
		row.StopStartDate,
		row.StopEndDate,
		orderIndex,
		formatOptionalFloat(row.Latitude),
		formatOptionalFloat(row.Longitude),
		row.StopNotes,
	}
}

// formatOptionalFloat returns the decimal representation of f, or "" if f is nil.
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
