package domain

// PaginationParams carries the page/limit values of a trip listing request
// from the HTTP layer down to the repo layer. Page is 1-indexed.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of trips per page, capped at 100.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional query params.
// Nil or out-of-range values fall back to page=1, limit=20; the limit is
// clamped to 100 so a single request cannot page through the whole table.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: 20}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, 100)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
