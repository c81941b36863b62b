// Package validate contains the pure business rule validators for stops and
// trips: coordinate plausibility and date-range consistency. Functions here
// never touch storage and are deterministic, so the rules can be unit-tested
// without a database and reused by any service that needs them.
package validate

import (
	"fmt"
	"strings"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// box is a coarse rectangular lat/lon bounding box.
type box struct {
	minLat, maxLat float64
	minLon, maxLon float64
}

func (b box) contains(lat, lon float64) bool {
	return lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon
}

// usBoxes covers the continental US, Alaska, and Hawaii as three rectangles.
var usBoxes = []box{
	{minLat: 25, maxLat: 49, minLon: -125, maxLon: -66},  // continental
	{minLat: 51, maxLat: 72, minLon: -180, maxLon: -130}, // alaska
	{minLat: 18, maxLat: 23, minLon: -161, maxLon: -154}, // hawaii
}

// countryBoxes maps a lowercase country name or code to its bounding boxes.
// Coordinates inside any box pass; countries not in this table skip the box
// check entirely. These boundaries are rough configuration data, not
// geographic truth — a proper check would need polygons or a geocoder.
var countryBoxes = map[string][]box{
	"israel": {{minLat: 29, maxLat: 33.5, minLon: 34, maxLon: 36}},
	"il":     {{minLat: 29, maxLat: 33.5, minLon: 34, maxLon: 36}},

	"japan": {{minLat: 24, maxLat: 46, minLon: 123, maxLon: 154}},
	"jp":    {{minLat: 24, maxLat: 46, minLon: 123, maxLon: 154}},

	"united states": usBoxes,
	"usa":           usBoxes,
	"us":            usBoxes,
}

// placeholders are sentinel coordinate pairs conventionally used to mean
// "no value" (Null Island, common test values, the poles on the prime
// meridian). Real itineraries never land exactly on these.
var placeholders = [][2]float64{
	{0, 0},
	{1, 1},
	{90, 0},
	{-90, 0},
}

// Coordinates checks an optional (latitude, longitude, country) triple for
// plausibility.
//
//   - Both nil: accepted — coordinates are optional.
//   - Exactly one nil: rejected, they must be provided together.
//   - Out of raw range (lat beyond ±90, lon beyond ±180): rejected.
//   - Exactly on a known placeholder pair: rejected.
//   - Country in the supported table and outside all of its boxes: rejected.
//
// Country matching is case-insensitive; unknown countries skip the box check
// so the coarse table never produces false negatives for places it does not
// model.
func Coordinates(lat, lon *float64, country string) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return domain.Invalid(domain.RuleInvalidCoordinatePair,
			"latitude and longitude must be provided together")
	}

	if *lat < -90 || *lat > 90 {
		return domain.Invalid(domain.RuleFieldInvalid,
			fmt.Sprintf("latitude %v must be between -90 and 90", *lat))
	}
	if *lon < -180 || *lon > 180 {
		return domain.Invalid(domain.RuleFieldInvalid,
			fmt.Sprintf("longitude %v must be between -180 and 180", *lon))
	}

	for _, p := range placeholders {
		if *lat == p[0] && *lon == p[1] {
			return domain.Invalid(domain.RulePlaceholderCoordinate,
				fmt.Sprintf("coordinates (%v, %v) appear to be a placeholder value", *lat, *lon))
		}
	}

	if country == "" {
		return nil
	}
	boxes, ok := countryBoxes[strings.ToLower(country)]
	if !ok {
		return nil
	}
	for _, b := range boxes {
		if b.contains(*lat, *lon) {
			return nil
		}
	}
	return domain.Invalid(domain.RuleCountryBoundsMismatch,
		fmt.Sprintf("coordinates (%v, %v) do not appear to be in %s", *lat, *lon, country))
}
