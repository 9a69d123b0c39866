// Package session holds the browse state of a company listing: the search
// query, the current page and the selected company. State is a value and
// only changes through Reduce.
package session

import (
	"strings"

	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// DefaultPageSize is the number of companies shown per page.
const DefaultPageSize = 10

// State is one snapshot of a browse session.
type State struct {
	Query    string
	Page     int // 1-based
	PageSize int
	Symbol   string // selected company, empty when nothing is selected
	Name     string
}

// New returns the initial state.
func New(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Page: 1, PageSize: pageSize}
}

// Selected reports whether a company is selected.
func (s State) Selected() bool { return s.Symbol != "" }

// Event is an input to Reduce.
type Event interface{ isEvent() }

// Search replaces the query and returns to the first page.
type Search struct{ Query string }

// NextPage advances one page, stopping at Pages.
type NextPage struct{ Pages int }

// PrevPage goes back one page, stopping at 1.
type PrevPage struct{}

// Select marks a company as selected.
type Select struct{ Company models.Company }

// ClearSelection drops the selection.
type ClearSelection struct{}

func (Search) isEvent()         {}
func (NextPage) isEvent()       {}
func (PrevPage) isEvent()       {}
func (Select) isEvent()         {}
func (ClearSelection) isEvent() {}

// Reduce returns the state that follows s after e. s is not modified.
func Reduce(s State, e Event) State {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.Page < 1 {
		s.Page = 1
	}

	switch e := e.(type) {
	case Search:
		s.Query = strings.TrimSpace(e.Query)
		s.Page = 1
	case NextPage:
		if s.Page < max(e.Pages, 1) {
			s.Page++
		}
	case PrevPage:
		if s.Page > 1 {
			s.Page--
		}
	case Select:
		s.Symbol = e.Company.Symbol
		s.Name = e.Company.Name
	case ClearSelection:
		s.Symbol = ""
		s.Name = ""
	}
	return s
}

// Filter keeps rows whose name or symbol contains q, ignoring case.
// An empty q keeps everything.
func Filter(rows []models.Company, q string) []models.Company {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	var out []models.Company
	for _, c := range rows {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return out
}

// Page is one page of a filtered listing.
type Page struct {
	Rows   []models.Company `json:"rows"`
	Number int              `json:"page"`
	Pages  int              `json:"pages"`
	Size   int              `json:"size"`
	Total  int              `json:"total"`
}

// Paginate slices rows into pages of size and returns page number n,
// clamped to [1, pages]. There is always at least one page.
func Paginate(rows []models.Company, n, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := max((len(rows)+size-1)/size, 1)
	n = min(max(n, 1), pages)

	start := (n - 1) * size
	end := min(start+size, len(rows))
	return Page{
		Rows:   rows[start:end],
		Number: n,
		Pages:  pages,
		Size:   size,
		Total:  len(rows),
	}
}

// View applies the state's query and page to rows.
func (s State) View(rows []models.Company) Page {
	return Paginate(Filter(rows, s.Query), s.Page, s.PageSize)
}
