package pokeapi

import "testing"

func TestIDFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"https://pokeapi.co/api/v2/pokemon/25/", 25},
		{"https://pokeapi.co/api/v2/pokemon/133", 133},
		{"https://pokeapi.co/api/v2/pokemon/pikachu/", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := IDFromURL(tc.in); got != tc.want {
			t.Fatalf("IDFromURL(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMergeNeverRegresses(t *testing.T) {
	exp := 112
	full := Pokemon{
		ID:             25,
		Name:           "pikachu",
		BaseExperience: &exp,
		Height:         4,
		Types:          []TypeSlot{{Slot: 1, Type: NamedResource{Name: "electric"}}},
	}
	shallow := Pokemon{ID: 25, Name: "pikachu", URL: "https://pokeapi.co/api/v2/pokemon/25/"}

	merged := full.Merge(shallow)
	if !merged.IsFull() || merged.BaseExp() != 112 || merged.Height != 4 {
		t.Fatalf("merging shallow into full lost detail: %#v", merged)
	}
	if merged.URL != shallow.URL {
		t.Fatalf("URL = %q, want %q", merged.URL, shallow.URL)
	}

	enriched := shallow.Merge(full)
	if !enriched.IsFull() || enriched.TypeNames()[0] != "electric" {
		t.Fatalf("merging full into shallow = %#v, want full", enriched)
	}

	exp = 1
	if enriched.BaseExp() != 112 {
		t.Fatalf("Merge should copy base experience, got %d", enriched.BaseExp())
	}
}

func TestDisplayHelpers(t *testing.T) {
	p := Pokemon{ID: 7, Name: "squirtle"}
	if p.DisplayID() != "#007" {
		t.Fatalf("DisplayID = %q, want #007", p.DisplayID())
	}
	if p.DisplayName() != "Squirtle" {
		t.Fatalf("DisplayName = %q, want Squirtle", p.DisplayName())
	}
	for name, want := range map[string]string{
		"élan":    "Élan",
		"ñandu":   "Ñandu",
		"mr-mime": "Mr-mime",
		"x":       "X",
	} {
		if got := (Pokemon{Name: name}).DisplayName(); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", name, got, want)
		}
	}
	ph := Placeholder("https://pokeapi.co/api/v2/", 42)
	if ph.Name != "pokemon-42" || ph.URL != "https://pokeapi.co/api/v2/pokemon/42/" {
		t.Fatalf("Placeholder = %#v", ph)
	}
}
