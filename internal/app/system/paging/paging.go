// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the number of rows returned when the client does not
// ask for a specific page size.
const DefaultPageSize = 10

// MaxPageSize caps client-requested page sizes.
const MaxPageSize = 100

// Page is a validated pagination window.
type Page struct {
	Number int // 1-based
	Size   int
}

// Parse extracts the "page" and "limit" query parameters, clamping them to
// sane values. Missing or malformed values fall back to page 1 and
// DefaultPageSize.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, Size: DefaultPageSize}

	if s := query.Get(r, "page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Number = n
		}
	}
	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Size = n
			if p.Size > MaxPageSize {
				p.Size = MaxPageSize
			}
		}
	}
	return p
}

// Skip returns the number of rows to skip for this window.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

// Limit returns the window size as an int64 for store queries.
func (p Page) Limit() int64 {
	return int64(p.Size)
}

// TotalPages returns how many pages the given total spans.
func (p Page) TotalPages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total + int64(p.Size) - 1) / int64(p.Size)
}
