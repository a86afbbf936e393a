package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/dexterm/internal/pokeapi"
)

func TestStore_ZeroValueIsIdle(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if snap.Status != StatusIdle {
		t.Fatalf("Status = %v, want idle", snap.Status)
	}
	if snap.Items != nil || snap.Count != 0 || snap.LastError != nil {
		t.Fatalf("zero snapshot not empty: %#v", snap)
	}
}

func TestStore_BeginFinishAndSnapshotClone(t *testing.T) {
	var s Store
	q := DefaultQuery()

	s.Begin(q, 1)
	if snap := s.Snapshot(); snap.Status != StatusLoading || snap.Generation != 1 {
		t.Fatalf("after Begin: status=%v gen=%d, want loading/1", snap.Status, snap.Generation)
	}

	before := time.Now()
	items := []pokeapi.Pokemon{{ID: 1, Name: "bulbasaur"}, {ID: 4, Name: "charmander"}}
	if !s.Finish(1, items, 1302) {
		t.Fatalf("Finish(current gen) = false")
	}
	items[0].Name = "mutated"

	snap := s.Snapshot()
	if snap.Status != StatusLoaded || snap.Count != 1302 || len(snap.Items) != 2 {
		t.Fatalf("snapshot = %#v, want loaded with 2 items", snap)
	}
	if snap.Items[0].Name != "bulbasaur" {
		t.Fatalf("Finish should copy items; got %q", snap.Items[0].Name)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	snap.Items[0].Name = "changed"
	if s.Snapshot().Items[0].Name != "bulbasaur" {
		t.Fatalf("Snapshot should clone items")
	}
}

func TestStore_StaleGenerationIgnored(t *testing.T) {
	var s Store
	s.Begin(DefaultQuery(), 1)
	s.Begin(DefaultQuery().WithPage(2), 2)

	if s.Finish(1, []pokeapi.Pokemon{{ID: 1}}, 1) {
		t.Fatalf("Finish(stale) = true")
	}
	if s.Fail(1, errors.New("late")) {
		t.Fatalf("Fail(stale) = true")
	}
	snap := s.Snapshot()
	if snap.Status != StatusLoading || snap.Query.Page != 2 || snap.LastError != nil {
		t.Fatalf("stale results leaked into snapshot: %#v", snap)
	}
}

func TestStore_BeginOutOfOrder(t *testing.T) {
	var s Store
	newer := DefaultQuery().WithPage(3)
	if !s.Begin(newer, 2) {
		t.Fatalf("Begin(2) = false")
	}
	if s.Begin(DefaultQuery(), 1) {
		t.Fatalf("Begin(1) after Begin(2) = true, want ignored")
	}

	snap := s.Snapshot()
	if snap.Generation != 2 || snap.Query.Page != 3 {
		t.Fatalf("older Begin rewound the store: gen=%d page=%d", snap.Generation, snap.Query.Page)
	}
	if !s.Finish(2, []pokeapi.Pokemon{{ID: 7}}, 1) {
		t.Fatalf("Finish(2) = false after a late Begin(1)")
	}
	if snap := s.Snapshot(); snap.Status != StatusLoaded || len(snap.Items) != 1 {
		t.Fatalf("snapshot = %#v, want loaded with one item", snap)
	}
}

func TestStore_FailClearsResults(t *testing.T) {
	var s Store
	s.Begin(DefaultQuery(), 1)
	s.Finish(1, []pokeapi.Pokemon{{ID: 1}}, 1)

	origErr := errors.New("fetch failed")
	s.Begin(DefaultQuery(), 2)
	s.Fail(2, origErr)

	snap := s.Snapshot()
	if snap.Status != StatusError || len(snap.Items) != 0 || snap.Count != 0 {
		t.Fatalf("snapshot = %#v, want error with no items", snap)
	}
	if snap.LastError == nil || snap.LastError.Error() != "fetch failed" {
		t.Fatalf("LastError = %v", snap.LastError)
	}
	if snap.LastError != origErr {
		t.Fatalf("LastError = %#v, want the recorded error unchanged", snap.LastError)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store
	for gen := uint64(1); gen <= 2; gen++ {
		s.Begin(DefaultQuery(), gen)
		s.Fail(gen, errors.New("down"))
	}
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("failures = %d offline=%v, want 2/true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Begin(DefaultQuery(), 3)
	s.Finish(3, nil, 0)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures, got %d", snap.ConsecutiveFailures)
	}
}

func TestStore_MergeItem(t *testing.T) {
	var s Store
	s.Begin(DefaultQuery(), 1)
	s.Finish(1, []pokeapi.Pokemon{{ID: 25, Name: "pikachu"}}, 1)

	exp := 112
	if !s.MergeItem(pokeapi.Pokemon{ID: 25, Name: "pikachu", BaseExperience: &exp}) {
		t.Fatalf("MergeItem(25) = false")
	}
	if s.MergeItem(pokeapi.Pokemon{ID: 1}) {
		t.Fatalf("MergeItem(1) = true for an absent entry")
	}
	if got := s.Snapshot().Items[0].BaseExp(); got != 112 {
		t.Fatalf("merged base experience = %d, want 112", got)
	}
}

func TestStore_DetailAndCategories(t *testing.T) {
	var s Store
	s.SetCategories([]pokeapi.Category{{Name: "fire"}})
	s.BeginDetail()
	if !s.Snapshot().DetailLoading {
		t.Fatalf("DetailLoading = false after BeginDetail")
	}

	p := pokeapi.Pokemon{ID: 4, Name: "charmander"}
	s.SetDetail(&p, nil)
	p.Name = "mutated"

	snap := s.Snapshot()
	if snap.DetailLoading || snap.Detail == nil || snap.Detail.Name != "charmander" {
		t.Fatalf("detail = %#v loading=%v", snap.Detail, snap.DetailLoading)
	}
	if len(snap.Categories) != 1 || snap.Categories[0].Name != "fire" {
		t.Fatalf("categories = %#v", snap.Categories)
	}

	s.SetDetail(nil, errors.New("boom"))
	if snap := s.Snapshot(); snap.DetailError == nil || snap.Detail == nil {
		t.Fatalf("failed detail load should keep previous detail and record the error")
	}
	s.ClearDetail()
	if s.Snapshot().Detail != nil {
		t.Fatalf("ClearDetail left detail")
	}
}

func TestSnapshot_Pages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{1302, 15, 87},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := (Snapshot{Count: tt.count}).Pages(tt.size); got != tt.want {
			t.Errorf("Pages(count=%d, size=%d) = %d, want %d", tt.count, tt.size, got, tt.want)
		}
	}
}
