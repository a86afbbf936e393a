package state

import (
	"fmt"
	"strings"
)

// AllCategories is the category value meaning "no category filter".
const AllCategories = "all"

// Sort selects the list ordering.
type Sort string

const (
	SortByID             Sort = "id"
	SortByName           Sort = "name"
	SortByBaseExperience Sort = "base_experience"
)

// Sorts lists the sort modes in UI cycling order.
var Sorts = []Sort{SortByID, SortByName, SortByBaseExperience}

// ParseSort maps a user or config value onto a Sort.
func ParseSort(raw string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "id":
		return SortByID, nil
	case "name":
		return SortByName, nil
	case "base_experience", "base-experience", "experience", "exp":
		return SortByBaseExperience, nil
	default:
		return SortByID, fmt.Errorf("unknown sort %q", raw)
	}
}

// Label is the short display name of the sort.
func (s Sort) Label() string {
	switch s {
	case SortByName:
		return "Name"
	case SortByBaseExperience:
		return "Base Exp"
	default:
		return "ID"
	}
}

// Next returns the following sort in cycling order.
func (s Sort) Next() Sort {
	for i, candidate := range Sorts {
		if candidate == s {
			return Sorts[(i+1)%len(Sorts)]
		}
	}
	return SortByID
}

// Query describes one list request.
type Query struct {
	Page     int
	Search   string
	Category string
	Sort     Sort
}

// DefaultQuery is the unfiltered first page sorted by ID.
func DefaultQuery() Query {
	return Query{Page: 1, Category: AllCategories, Sort: SortByID}
}

// Normalize clamps the page to 1 and fills empty category and sort.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == "" {
		q.Category = AllCategories
	}
	if q.Sort == "" {
		q.Sort = SortByID
	}
	return q
}

// SearchTerm returns the trimmed search text.
func (q Query) SearchTerm() string {
	return strings.TrimSpace(q.Search)
}

// HasActiveFilters reports whether a search, category or non-default sort is set.
func (q Query) HasActiveFilters() bool {
	q = q.Normalize()
	return q.SearchTerm() != "" || q.Category != AllCategories || q.Sort != SortByID
}

// ClearFilters resets search, category, sort and page.
func (q Query) ClearFilters() Query {
	return DefaultQuery()
}

// WithSearch sets the search text and returns to the first page.
func (q Query) WithSearch(search string) Query {
	q.Search = search
	q.Page = 1
	return q
}

// WithCategory sets the category filter and returns to the first page.
func (q Query) WithCategory(category string) Query {
	q.Category = category
	q.Page = 1
	return q.Normalize()
}

// WithSort sets the ordering and returns to the first page.
func (q Query) WithSort(sort Sort) Query {
	q.Sort = sort
	q.Page = 1
	return q
}

// WithPage moves to page, clamped to 1.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q.Normalize()
}
