// Package pagination resolves a requested page number against a result
// count. Out-of-range requests clamp to the nearest valid page instead of
// failing.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

const DefaultPage = 1

// Page describes one slice of an ordered result.
type Page struct {
	Number   int   `json:"number"`
	PerPage  int   `json:"perPage"`
	Total    int64 `json:"total"`
	NumPages int   `json:"numPages"`
	HasNext  bool  `json:"hasNext"`
	HasPrev  bool  `json:"hasPrevious"`
	NextPage *int  `json:"nextPage,omitempty"`
	PrevPage *int  `json:"previousPage,omitempty"`
}

// NumPages never returns less than 1 so an empty result still has a first page.
func NumPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

// Resolve parses raw as a page number. Non-numeric input selects the first
// page, numbers past the end select the last page and numbers below 1 select
// the first.
func Resolve(raw string, total int64, perPage int) Page {
	if perPage <= 0 {
		perPage = 1
	}
	pages := NumPages(total, perPage)

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		n = DefaultPage
	case n < 1:
		n = DefaultPage
	case n > pages:
		n = pages
	}

	p := Page{
		Number:   n,
		PerPage:  perPage,
		Total:    total,
		NumPages: pages,
		HasPrev:  n > 1,
		HasNext:  n < pages,
	}
	if p.HasPrev {
		prev := n - 1
		p.PrevPage = &prev
	}
	if p.HasNext {
		next := n + 1
		p.NextPage = &next
	}
	return p
}

func (p Page) Limit() int  { return p.PerPage }
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }
