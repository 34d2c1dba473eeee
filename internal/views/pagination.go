package views

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 10
)

// PageRequest is a 1-based page selection.
type PageRequest struct {
	Page  int
	Limit int
}

// ParsePage coerces text pagination parameters, falling back to page 1 /
// size 10 on missing or non-numeric input.
func ParsePage(pageStr, limitStr string) PageRequest {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = defaultPage
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}

	return PageRequest{Page: page, Limit: limit}
}

// Offset converts the 1-based page number into a row offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
