// Package paginate splits a counted result set into numbered pages.
package paginate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrPageNotAnInteger is returned for a page parameter that is neither
	// an integer nor "last".
	ErrPageNotAnInteger = errors.New("page is not an integer")

	// ErrEmptyPage is returned for a page outside the valid range.
	ErrEmptyPage = errors.New("page contains no results")
)

// LastPage is the page parameter value selecting the final page.
const LastPage = "last"

// Paginator computes page boundaries for count items.
type Paginator struct {
	Count               int
	PerPage             int
	Orphans             int
	AllowEmptyFirstPage bool
}

// New returns a Paginator. perPage below 1 is treated as 1.
func New(count, perPage, orphans int, allowEmptyFirstPage bool) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if orphans < 0 {
		orphans = 0
	}
	return &Paginator{
		Count:               count,
		PerPage:             perPage,
		Orphans:             orphans,
		AllowEmptyFirstPage: allowEmptyFirstPage,
	}
}

// NumPages returns the total number of pages.
func (p *Paginator) NumPages() int {
	if p.Count == 0 && !p.AllowEmptyFirstPage {
		return 0
	}
	hits := max(1, p.Count-p.Orphans)
	return (hits + p.PerPage - 1) / p.PerPage
}

// PageRange returns the 1-based page numbers.
func (p *Paginator) PageRange() []int {
	n := p.NumPages()
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Validate checks that number names an existing page.
func (p *Paginator) Validate(number int) error {
	if number < 1 {
		return fmt.Errorf("%w: page %d is less than 1", ErrEmptyPage, number)
	}
	if number > p.NumPages() {
		if number == 1 && p.AllowEmptyFirstPage {
			return nil
		}
		return fmt.Errorf("%w: page %d", ErrEmptyPage, number)
	}
	return nil
}

// Page returns page number, which must be valid.
func (p *Paginator) Page(number int) (Page, error) {
	if err := p.Validate(number); err != nil {
		return Page{}, err
	}

	bottom := (number - 1) * p.PerPage
	top := bottom + p.PerPage
	if top+p.Orphans >= p.Count {
		top = p.Count
	}

	page := Page{
		Number:      number,
		NumPages:    p.NumPages(),
		Count:       p.Count,
		Offset:      bottom,
		Limit:       max(0, top-bottom),
		HasPrevious: number > 1,
	}
	page.HasNext = number < page.NumPages
	if page.HasNext {
		page.NextPageNumber = number + 1
	}
	if page.HasPrevious {
		page.PreviousPageNumber = number - 1
	}
	if p.Count > 0 {
		page.StartIndex = bottom + 1
		page.EndIndex = bottom + page.Limit
	}
	return page, nil
}

// Get parses raw and returns the page it names. An empty raw value means
// the first page.
func (p *Paginator) Get(raw string) (Page, error) {
	number, err := ParsePage(raw, p.NumPages())
	if err != nil {
		return Page{}, err
	}
	return p.Page(number)
}

// ParsePage converts a page parameter to a number. "last" resolves to
// numPages and an empty value to 1.
func ParsePage(raw string, numPages int) (int, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return 1, nil
	case LastPage:
		return max(1, numPages), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPageNotAnInteger, raw)
	}
	return n, nil
}

// Page is one page of results.
type Page struct {
	Number             int
	NumPages           int
	Count              int
	StartIndex         int
	EndIndex           int
	Offset             int
	Limit              int
	HasNext            bool
	HasPrevious        bool
	NextPageNumber     int
	PreviousPageNumber int
}

// HasOtherPages reports whether there is more than one page.
func (p Page) HasOtherPages() bool {
	return p.HasNext || p.HasPrevious
}
