package state

import "testing"

func TestQuery_Normalize(t *testing.T) {
	q := Query{Page: -3, Category: "  "}.Normalize()
	if q.Page != 1 || q.Category != AllCategories || q.Sort != SortByID {
		t.Fatalf("Normalize = %#v", q)
	}
}

func TestQuery_FilterChangesResetPage(t *testing.T) {
	q := DefaultQuery().WithPage(5)
	if q.WithSearch("pika").Page != 1 {
		t.Fatalf("WithSearch should reset page")
	}
	if q.WithCategory("fire").Page != 1 {
		t.Fatalf("WithCategory should reset page")
	}
	if q.WithSort(SortByName).Page != 1 {
		t.Fatalf("WithSort should reset page")
	}
	if q.WithCategory("").Category != AllCategories {
		t.Fatalf("empty category should normalise to all")
	}
}

func TestQuery_HasActiveFiltersAndClear(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want bool
	}{
		{"default", DefaultQuery(), false},
		{"blank search", DefaultQuery().WithSearch("   "), false},
		{"search", DefaultQuery().WithSearch("pikachu"), true},
		{"category", DefaultQuery().WithCategory("fire"), true},
		{"sort", DefaultQuery().WithSort(SortByName), true},
		{"page only", DefaultQuery().WithPage(3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.HasActiveFilters(); got != tt.want {
				t.Fatalf("HasActiveFilters = %v, want %v", got, tt.want)
			}
		})
	}

	cleared := Query{Page: 4, Search: "x", Category: "fire", Sort: SortByName}.ClearFilters()
	if cleared != DefaultQuery() {
		t.Fatalf("ClearFilters = %#v, want %#v", cleared, DefaultQuery())
	}
}

func TestParseSortAndCycle(t *testing.T) {
	for raw, want := range map[string]Sort{"": SortByID, "Name": SortByName, "base-experience": SortByBaseExperience} {
		got, err := ParseSort(raw)
		if err != nil || got != want {
			t.Fatalf("ParseSort(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
	if _, err := ParseSort("weight"); err == nil {
		t.Fatalf("ParseSort(weight) returned nil error")
	}
	if SortByID.Next() != SortByName || SortByBaseExperience.Next() != SortByID {
		t.Fatalf("sort cycling order wrong")
	}
}
