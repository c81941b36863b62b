package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist — or exists but is not owned by the acting user.
// The two cases are deliberately indistinguishable so that non-owners cannot
// probe for the existence of other users' trips.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrOrderConflict is returned by the reorder operation when the supplied
// stop ID list is not an exact permutation of the trip's current stops
// (missing, extra, or duplicate IDs).
// Handlers should map this to HTTP 409 Conflict.
var ErrOrderConflict = errors.New("order conflict")

// ValidationRule identifies which business rule rejected a write.
// The rule travels with the error so clients can explain a rejection
// without re-deriving it.
type ValidationRule string

const (
	RuleInvertedRange         ValidationRule = "inverted_range"
	RuleOutsideTripBounds     ValidationRule = "outside_trip_bounds"
	RuleSiblingOverlap        ValidationRule = "sibling_overlap"
	RuleInvalidCoordinatePair ValidationRule = "invalid_coordinate_pair"
	RulePlaceholderCoordinate ValidationRule = "placeholder_coordinate"
	RuleCountryBoundsMismatch ValidationRule = "country_bounds_mismatch"
	RuleFieldInvalid          ValidationRule = "field_invalid"
)

// ValidationError is the structured form of a business rule rejection.
// It matches errors.Is(err, ErrValidation), so callers that only care about
// the category can test the sentinel, while handlers can surface Rule and
// Detail to the client.
type ValidationError struct {
	// Rule names the violated rule.
	Rule ValidationRule
	// Detail is a human-readable explanation, including the conflicting
	// sibling stop where applicable.
	Detail string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Detail
}

// Is reports that a ValidationError belongs to the ErrValidation category.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for the given rule.
func Invalid(rule ValidationRule, detail string) error {
	return &ValidationError{Rule: rule, Detail: detail}
}
