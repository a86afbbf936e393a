package ui

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dexterm/internal/favorites"
	"github.com/five82/dexterm/internal/fetch"
	"github.com/five82/dexterm/internal/pokeapi"
	"github.com/five82/dexterm/internal/pokeapi/pokeapitest"
	"github.com/five82/dexterm/internal/prefs"
	"github.com/five82/dexterm/internal/query"
	"github.com/five82/dexterm/internal/state"
	"github.com/five82/dexterm/internal/storage"
)

type harness struct {
	srv       *pokeapitest.Server
	favs      *favorites.Store
	prefsPath string
	m         Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := pokeapitest.NewServer(t, pokeapitest.Sample())
	return newHarnessWithServer(t, srv)
}

func newHarnessWithServer(t *testing.T, srv *pokeapitest.Server) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	client, err := fetch.NewClient(fetch.Options{})
	if err != nil {
		t.Fatalf("fetch.NewClient returned error: %v", err)
	}
	gw, err := pokeapi.New(pokeapi.Options{BaseURL: srv.BaseURL(), Client: client})
	if err != nil {
		t.Fatalf("pokeapi.New returned error: %v", err)
	}
	orch, err := query.New(query.Options{Gateway: gw, Store: &state.Store{}, PageSize: 3})
	if err != nil {
		t.Fatalf("query.New returned error: %v", err)
	}
	favs := favorites.New(favorites.Options{
		Persister: storage.NewAdapter(storage.NewMemory(), nil),
		BaseURL:   gw.BaseURL(),
	})
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")

	m := New(Options{
		Context:        ctx,
		Orchestrator:   orch,
		Favorites:      favs,
		Prefs:          prefs.Default(),
		PrefsPath:      prefsPath,
		SearchDebounce: time.Hour,
		RefreshEvery:   time.Hour,
		Logger:         slog.New(slog.DiscardHandler),
	})
	h := &harness{srv: srv, favs: favs, prefsPath: prefsPath, m: m}
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg and runs any resulting commands synchronously.
func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(t, cmd)
}

func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(t, c)
		}
	default:
		h.send(t, msg)
	}
}

func (h *harness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		h.send(t, keyMsg(k))
	}
}

// pressOnly updates the model without running the returned command.
func (h *harness) pressOnly(t *testing.T, k string) {
	t.Helper()
	next, _ := h.m.Update(keyMsg(k))
	h.m = next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func itemIDs(items []pokeapi.Pokemon) []int {
	out := make([]int, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModel_LoadsFirstPage(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())

	if got := itemIDs(h.m.snapshot.Items); !sameInts(got, []int{1, 4, 7}) {
		t.Fatalf("items = %v, want [1 4 7]", got)
	}
	if h.m.snapshot.Status != state.StatusLoaded {
		t.Fatalf("status = %v, want loaded", h.m.snapshot.Status)
	}
	view := h.m.View()
	for _, want := range []string{"Bulbasaur", "#004", "page 1/3"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestModel_Paging(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())

	h.press(t, "]")
	if h.m.query.Page != 2 {
		t.Fatalf("page = %d, want 2", h.m.query.Page)
	}
	if got := itemIDs(h.m.snapshot.Items); !sameInts(got, []int{6, 25, 133}) {
		t.Fatalf("page 2 items = %v", got)
	}

	h.press(t, "]", "]", "]")
	if h.m.query.Page != 3 {
		t.Fatalf("page = %d, want to stop at last page 3", h.m.query.Page)
	}

	h.press(t, "[", "[", "[")
	if h.m.query.Page != 1 {
		t.Fatalf("page = %d, want to stop at 1", h.m.query.Page)
	}
}

func TestModel_CycleSortPersistsPreference(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())
	h.press(t, "]")

	h.press(t, "s")
	if h.m.query.Sort != state.SortByName {
		t.Fatalf("sort = %q, want name", h.m.query.Sort)
	}
	if h.m.query.Page != 1 {
		t.Fatalf("changing sort should reset to page 1, got %d", h.m.query.Page)
	}
	if got := prefs.Load(h.prefsPath); got.Sort != string(state.SortByName) {
		t.Fatalf("saved sort = %q, want name", got.Sort)
	}

	h.press(t, "s")
	if h.m.query.Sort != state.SortByBaseExperience {
		t.Fatalf("sort = %q, want base_experience", h.m.query.Sort)
	}
	// Page 1 is bulbasaur 64, charmander 62, squirtle 63.
	if got := itemIDs(h.m.snapshot.Items); !sameInts(got, []int{1, 7, 4}) {
		t.Fatalf("base experience order = %v, want [1 7 4]", got)
	}
}

func TestModel_ToggleFavoriteAndFavoritesView(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())

	h.press(t, "j", "f")
	if !h.favs.IsFavorite(4) {
		t.Fatalf("charmander should be favorited")
	}
	if !strings.Contains(h.m.flash, "Charmander") {
		t.Fatalf("flash = %q, want mention of Charmander", h.m.flash)
	}

	h.press(t, "F")
	if h.m.currentView != ViewFavorites {
		t.Fatalf("view = %v, want favorites", h.m.currentView)
	}
	view := h.m.View()
	if !strings.Contains(view, "Favorites (1)") || !strings.Contains(view, "Charmander") {
		t.Fatalf("favorites view missing entry:\n%s", view)
	}

	h.press(t, "f")
	if h.favs.IsFavorite(4) {
		t.Fatalf("second toggle should remove favorite")
	}
	if !strings.Contains(h.m.View(), "No favorites yet") {
		t.Fatalf("empty favorites view should show hint")
	}
}

func TestModel_ClearFavoritesNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())
	h.press(t, "f", "j", "f")
	if h.favs.Len() != 2 {
		t.Fatalf("favorites = %d, want 2", h.favs.Len())
	}

	h.press(t, "X")
	if !h.m.confirmClear || h.favs.Len() != 2 {
		t.Fatalf("first X should only ask for confirmation")
	}
	h.press(t, "j")
	if h.m.confirmClear {
		t.Fatalf("other key should cancel confirmation")
	}

	h.press(t, "X", "X")
	if h.favs.Len() != 0 {
		t.Fatalf("favorites = %d after confirmed clear, want 0", h.favs.Len())
	}
}

func TestModel_SearchDebouncesUntilEnter(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())

	h.pressOnly(t, "/")
	if !h.m.searching {
		t.Fatalf("/ should open search input")
	}
	for _, r := range "pikachu" {
		h.pressOnly(t, string(r))
	}
	if !h.m.searchDebounce.Pending() {
		t.Fatalf("typing should schedule a debounced search")
	}
	if h.m.query.Search != "" {
		t.Fatalf("query ran before debounce settled: %q", h.m.query.Search)
	}

	h.press(t, "enter")
	if h.m.searching || h.m.searchDebounce.Pending() {
		t.Fatalf("enter should close input and cancel pending search")
	}
	if got := itemIDs(h.m.snapshot.Items); !sameInts(got, []int{25}) {
		t.Fatalf("search results = %v, want [25]", got)
	}
	if !strings.Contains(h.m.View(), "Search: pikachu") {
		t.Fatalf("title should show search term")
	}
}

func TestModel_SearchSettledRunsQuery(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())

	h.send(t, searchSettledMsg("eevee"))
	if h.m.query.Search != "eevee" {
		t.Fatalf("search = %q, want eevee", h.m.query.Search)
	}
}

func TestModel_RowSettledEnrichesSelectedRow(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())
	if h.m.snapshot.Items[0].IsFull() {
		t.Fatalf("list rows should start shallow")
	}

	// A stale row event is ignored.
	h.send(t, rowSettledMsg(4))
	if h.m.snapshot.Items[1].IsFull() {
		t.Fatalf("unselected row should not be enriched")
	}

	h.send(t, rowSettledMsg(1))
	if !h.m.snapshot.Items[0].IsFull() || h.m.snapshot.Items[0].BaseExp() != 64 {
		t.Fatalf("selected row = %#v, want enriched bulbasaur", h.m.snapshot.Items[0])
	}
	if h.m.snapshot.Detail != nil {
		t.Fatalf("row enrichment must not open the detail view")
	}
	if _, ok := h.favs.Snapshot(1); !ok {
		t.Fatalf("enriched row should be cached as a snapshot")
	}
}

func TestModel_TypeFilterAndClear(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())
	h.run(t, h.m.loadCategories())

	h.press(t, "t")
	if h.m.query.Category != "grass" {
		t.Fatalf("category = %q, want grass", h.m.query.Category)
	}
	if got := itemIDs(h.m.snapshot.Items); !sameInts(got, []int{1, 43}) {
		t.Fatalf("grass items = %v, want [1 43]", got)
	}
	if got := prefs.Load(h.prefsPath); got.Category != "grass" {
		t.Fatalf("saved category = %q, want grass", got.Category)
	}

	h.press(t, "x")
	if h.m.query.HasActiveFilters() {
		t.Fatalf("x should clear filters, got %#v", h.m.query)
	}
	if got := itemIDs(h.m.snapshot.Items); !sameInts(got, []int{1, 4, 7}) {
		t.Fatalf("items after clear = %v", got)
	}
}

func TestModel_DetailPane(t *testing.T) {
	h := newHarness(t)
	h.run(t, h.m.runQuery())

	h.press(t, "enter")
	if !h.m.showDetail {
		t.Fatalf("enter should open detail")
	}
	d := h.m.snapshot.Detail
	if d == nil || d.ID != 1 || !d.IsFull() {
		t.Fatalf("detail = %#v, want full bulbasaur", d)
	}
	if _, ok := h.favs.Snapshot(1); !ok {
		t.Fatalf("loaded detail should be cached as a snapshot")
	}
	content := h.m.detailContent()
	for _, want := range []string{"0.7 m", "6.9 kg", "Base stats", "grass"} {
		if !strings.Contains(content, want) {
			t.Fatalf("detail missing %q:\n%s", want, content)
		}
	}

	h.press(t, "esc")
	if h.m.showDetail {
		t.Fatalf("esc should close detail")
	}
}

func TestModel_FavoriteTargetPrefersOpenDetail(t *testing.T) {
	h := newHarness(t)
	exp := 64
	full := pokeapi.Pokemon{ID: 1, Name: "bulbasaur", BaseExperience: &exp, Height: 7}
	h.m.snapshot.Items = []pokeapi.Pokemon{{ID: 1, Name: "bulbasaur"}, {ID: 4, Name: "charmander"}}
	h.m.snapshot.Detail = &full
	h.m.showDetail = true
	h.m.selectedRow = 0

	got, ok := h.m.favoriteTarget()
	if !ok || !got.IsFull() {
		t.Fatalf("favoriteTarget = %#v, %v, want the loaded detail", got, ok)
	}

	h.m.selectedRow = 1
	if got, _ := h.m.favoriteTarget(); got.ID != 4 || got.IsFull() {
		t.Fatalf("favoriteTarget = %#v, want the selected row when detail is for another entry", got)
	}

	h.m.showDetail = false
	h.m.selectedRow = 0
	if got, _ := h.m.favoriteTarget(); got.IsFull() {
		t.Fatalf("favoriteTarget = %#v, want the row once detail is closed", got)
	}
}

func TestModel_ListFailureShowsRetryHint(t *testing.T) {
	srv := pokeapitest.NewServer(t, pokeapitest.Sample())
	srv.FailPath("/pokemon", http.StatusInternalServerError)
	h := newHarnessWithServer(t, srv)

	h.run(t, h.m.runQuery())
	if h.m.snapshot.Status != state.StatusError {
		t.Fatalf("status = %v, want error", h.m.snapshot.Status)
	}
	if !strings.Contains(h.m.View(), "Press r to retry") {
		t.Fatalf("view should offer retry")
	}

	h.press(t, "r")
	if h.m.snapshot.ConsecutiveFailures != 2 || !h.m.snapshot.IsOffline() {
		t.Fatalf("failures = %d, want 2", h.m.snapshot.ConsecutiveFailures)
	}
}

func TestModel_CycleThemeSavesPreference(t *testing.T) {
	h := newHarness(t)
	h.press(t, "T")
	if h.m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", h.m.theme.Name)
	}
	if got := prefs.Load(h.prefsPath); got.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q", got.Theme)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatHeight(7); got != "0.7 m" {
		t.Fatalf("formatHeight(7) = %q", got)
	}
	if got := formatWeight(69); got != "6.9 kg" {
		t.Fatalf("formatWeight(69) = %q", got)
	}
	if got := formatHeight(0); got != "—" {
		t.Fatalf("formatHeight(0) = %q", got)
	}
	if got := statBar(255, 4); got != "████" {
		t.Fatalf("statBar(255) = %q", got)
	}
	if got := statBar(1, 4); got != "█░░░" {
		t.Fatalf("statBar(1) = %q, want one filled cell", got)
	}
	if got := statBar(0, 2); got != "░░" {
		t.Fatalf("statBar(0) = %q", got)
	}
	if got := formatBaseExp(pokeapi.Pokemon{}); got != "—" {
		t.Fatalf("formatBaseExp(unknown) = %q", got)
	}
}

func TestNextCategoryAndLevel(t *testing.T) {
	cats := []pokeapi.Category{{Name: "fire"}, {Name: "water"}}
	tests := []struct {
		current string
		want    string
	}{
		{state.AllCategories, "fire"},
		{"fire", "water"},
		{"water", state.AllCategories},
		{"unknown", state.AllCategories},
	}
	for _, tt := range tests {
		if got := nextCategory(tt.current, cats); got != tt.want {
			t.Fatalf("nextCategory(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if nextLevel(slog.LevelError) != slog.LevelDebug || nextLevel(slog.LevelInfo) != slog.LevelWarn {
		t.Fatalf("nextLevel cycle broken")
	}
}
