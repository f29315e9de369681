// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by paged list
// endpoints.
const PageSize = 50

// MaxPageSize caps the per_page query parameter.
const MaxPageSize = 200

// Page describes one requested window of a list.
type Page struct {
	Number  int   // 1-based page number
	PerPage int   // rows per page
	Offset  int64 // rows to skip
}

// Parse reads the "page" and "per_page" query parameters. Missing or
// invalid values fall back to page 1 with the default page size.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, PerPage: PageSize}

	if s := query.Get(r, "page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Number = n
		}
	}
	if s := query.Get(r, "per_page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.PerPage = n
		}
	}
	p.Offset = int64(p.Number-1) * int64(p.PerPage)
	return p
}

// LimitPlusOne returns PerPage+1 for look-ahead pagination (fetch one
// extra row to detect whether a next page exists).
func (p Page) LimitPlusOne() int64 { return int64(p.PerPage + 1) }

// Trim cuts a look-ahead slice down to the page size. It modifies the
// slice in place and reports whether a next page exists.
func Trim[T any](rows *[]T, p Page) (hasNext bool) {
	if len(*rows) > p.PerPage {
		*rows = (*rows)[:p.PerPage]
		return true
	}
	return false
}
