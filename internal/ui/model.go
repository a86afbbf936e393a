package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dexterm/internal/debounce"
	"github.com/five82/dexterm/internal/favorites"
	"github.com/five82/dexterm/internal/logtail"
	"github.com/five82/dexterm/internal/pokeapi"
	"github.com/five82/dexterm/internal/prefs"
	"github.com/five82/dexterm/internal/query"
	"github.com/five82/dexterm/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewList View = iota
	ViewFavorites
	ViewLogs
)

const defaultSearchDebounce = 500 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context        context.Context
	Orchestrator   *query.Orchestrator
	Favorites      *favorites.Store
	Prefs          prefs.Prefs
	PrefsPath      string
	LogPath        string
	SearchDebounce time.Duration
	RefreshEvery   time.Duration
	Logger         *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	orch      *query.Orchestrator
	favs      *favorites.Store
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	logger    *slog.Logger
	refresh   time.Duration
	keys      keyMap

	// Debounced input is delivered through events.
	events         chan tea.Msg
	searchDebounce *debounce.Debouncer[string]
	rowDebounce    *debounce.Debouncer[int]

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	showDetail  bool
	focusDetail bool

	// Data state
	query    state.Query
	snapshot state.Snapshot

	// Selection
	selectedRow int
	favoriteRow int

	// Search input
	searching   bool
	searchInput textinput.Model

	// Detail pane
	detailViewport viewport.Model

	// Log view
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logFollow   bool
	logLevel    slog.Level
	logErr      error

	// Footer message
	flash        string
	flashDanger  bool
	confirmClear bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = DefaultUIInterval
	}
	delay := opts.SearchDebounce
	if delay <= 0 {
		delay = defaultSearchDebounce
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	events := make(chan tea.Msg, 8)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	input := textinput.New()
	input.Placeholder = "Name or number..."
	input.Prompt = "/ "
	input.CharLimit = 64

	m := Model{
		ctx:         ctx,
		orch:        opts.Orchestrator,
		favs:        opts.Favorites,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		logger:      logger,
		refresh:     refresh,
		keys:        DefaultKeyMap(),
		events:      events,
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewList,
		query:       opts.Prefs.Query(),
		searchInput: input,
		logFollow:   true,
		logLevel:    slog.LevelInfo,
	}
	m.searchDebounce = debounce.New(delay, func(term string) { send(searchSettledMsg(term)) })
	m.rowDebounce = debounce.New(RowEnrichDelay, func(id int) { send(rowSettledMsg(id)) })
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.refresh),
		waitForEvent(m.ctx, m.events),
		m.runQuery(),
		m.loadCategories(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeViewports()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{fetchSnapshotCmd(m.orch.Store()), tickCmd(m.refresh)}
		if m.currentView == ViewLogs && m.logFollow {
			cmds = append(cmds, m.loadLogs())
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case queryDoneMsg:
		if errors.Is(msg.err, query.ErrSuperseded) {
			return m, nil
		}
		m.applySnapshot(m.orch.Store().Snapshot())
		if msg.err != nil {
			m.setFlash("Failed to load list. Press r to retry.", true)
		}
		m.scheduleRowEnrich()
		return m, nil

	case categoriesDoneMsg:
		if msg.err != nil {
			m.setFlash("Type list unavailable", true)
		}
		m.applySnapshot(m.orch.Store().Snapshot())
		return m, nil

	case detailDoneMsg:
		if msg.err != nil {
			var nf *pokeapi.NotFoundError
			if errors.As(msg.err, &nf) {
				m.setFlash("Pokémon not found", true)
			} else {
				m.setFlash("Failed to load details", true)
			}
		} else if m.favs != nil {
			m.favs.CacheSnapshot(msg.pokemon.ID, msg.pokemon)
		}
		m.applySnapshot(m.orch.Store().Snapshot())
		return m, nil

	case rowDoneMsg:
		if msg.err == nil && m.favs != nil {
			m.favs.CacheSnapshot(msg.pokemon.ID, msg.pokemon)
		}
		m.applySnapshot(m.orch.Store().Snapshot())
		return m, nil

	case eventMsg:
		next, cmd := m.Update(msg.msg)
		return next, tea.Batch(cmd, waitForEvent(m.ctx, m.events))

	case searchSettledMsg:
		if string(msg) == m.query.Search {
			return m, nil
		}
		return m, m.setQuery(m.query.WithSearch(string(msg)))

	case rowSettledMsg:
		if item, ok := m.selectedItem(); !ok || item.ID != int(msg) {
			return m, nil
		}
		return m, m.enrichRow(int(msg))

	case logsMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	// Any key other than a second X cancels a pending clear.
	if !key.Matches(msg, m.keys.ClearFavorites) {
		m.confirmClear = false
	}
	m.setFlash("", false)

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.searchDebounce.Cancel()
		m.rowDebounce.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.renderDetail()
		return m, nil

	case key.Matches(msg, m.keys.ViewList):
		m.currentView = ViewList
		return m, nil

	case key.Matches(msg, m.keys.ViewFavorites):
		m.currentView = ViewFavorites
		m.clampSelection()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		m.showDetail = false
		m.focusDetail = false
		return m, m.loadLogs()

	case key.Matches(msg, m.keys.Escape):
		if m.showDetail {
			m.showDetail = false
			m.focusDetail = false
			m.orch.Store().ClearDetail()
			m.resizeViewports()
			return m, nil
		}
		m.currentView = ViewList
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

// handleBrowseKey handles keys shared by the list and favorites views.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focusDetail && m.showDetail {
		switch {
		case key.Matches(msg, m.keys.Tab):
			m.focusDetail = false
			return m, nil
		case key.Matches(msg, m.keys.ToggleFavorite):
			m.toggleFavorite()
			return m, nil
		}
		var cmd tea.Cmd
		m.detailViewport, cmd = m.detailViewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		if m.showDetail {
			m.focusDetail = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.moveSelection(-len(m.visibleItems()))
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.moveSelection(len(m.visibleItems()))
		return m, nil

	case key.Matches(msg, m.keys.OpenDetail):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.showDetail = true
		m.resizeViewports()
		return m, m.loadDetail(item.ID)

	case key.Matches(msg, m.keys.ToggleFavorite):
		m.toggleFavorite()
		return m, nil

	case key.Matches(msg, m.keys.ClearFavorites):
		if m.favs == nil || m.favs.Len() == 0 {
			return m, nil
		}
		if !m.confirmClear {
			m.confirmClear = true
			m.setFlash(fmt.Sprintf("Press X again to remove all %d favorites", m.favs.Len()), true)
			return m, nil
		}
		m.confirmClear = false
		m.favs.Clear()
		m.favoriteRow = 0
		m.setFlash("Favorites cleared", false)
		return m, nil
	}

	if m.currentView != ViewList {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue(m.query.Search)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		next := m.query.Sort.Next()
		m.setFlash("Sort: "+next.Label(), false)
		return m, m.setQuery(m.query.WithSort(next))

	case key.Matches(msg, m.keys.CycleType):
		next := nextCategory(m.query.Category, m.snapshot.Categories)
		m.setFlash("Type: "+next, false)
		return m, m.setQuery(m.query.WithCategory(next))

	case key.Matches(msg, m.keys.ClearFilters):
		m.searchDebounce.Cancel()
		m.searchInput.SetValue("")
		return m, m.setQuery(m.query.ClearFilters())

	case key.Matches(msg, m.keys.NextPage):
		if m.query.SearchTerm() != "" || m.query.Page >= m.snapshot.Pages(m.orch.PageSize()) {
			return m, nil
		}
		return m, m.setQuery(m.query.WithPage(m.query.Page + 1))

	case key.Matches(msg, m.keys.PrevPage):
		if m.query.Page <= 1 {
			return m, nil
		}
		return m, m.setQuery(m.query.WithPage(m.query.Page - 1))

	case key.Matches(msg, m.keys.Retry):
		m.selectedRow = 0
		return m, m.retry()
	}
	return m, nil
}

// handleSearchKey feeds the search input. Typing is debounced; enter runs the
// search at once.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.searchDebounce.Cancel()
		return m, m.setQuery(m.query.WithSearch(m.searchInput.Value()))
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if value := m.searchInput.Value(); value != before {
		m.searchDebounce.Call(value)
	}
	return m, cmd
}

// handleLogsKey processes keys in the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.CycleLevel):
		m.logLevel = nextLevel(m.logLevel)
		return m, m.loadLogs()
	case key.Matches(msg, m.keys.Top):
		m.logFollow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logFollow = false
	}
	return m, cmd
}

// setQuery makes q current, remembers its sort and category and runs it.
func (m *Model) setQuery(q state.Query) tea.Cmd {
	q = q.Normalize()
	if q.Sort != m.query.Sort || q.Category != m.query.Category {
		m.prefs = m.prefs.Remember(q)
		m.savePrefs()
	}
	if q.Page != m.query.Page || q.Search != m.query.Search || q.Category != m.query.Category || q.Sort != m.query.Sort {
		m.selectedRow = 0
	}
	m.query = q
	return m.runQuery()
}

func (m *Model) toggleFavorite() {
	if m.favs == nil {
		return
	}
	target, ok := m.favoriteTarget()
	if !ok {
		return
	}
	if m.favs.Toggle(target.ID, &target) {
		m.setFlash("★ Added "+target.DisplayName()+" to favorites", false)
	} else {
		m.setFlash("Removed "+target.DisplayName()+" from favorites", false)
	}
	m.clampSelection()
	m.renderDetail()
}

// favoriteTarget picks the entity a favorite toggle applies to. The loaded
// detail is preferred over the list row it was opened from.
func (m Model) favoriteTarget() (pokeapi.Pokemon, bool) {
	detail := m.snapshot.Detail
	if m.focusDetail && detail != nil {
		return *detail, true
	}
	item, ok := m.selectedItem()
	if !ok {
		return pokeapi.Pokemon{}, false
	}
	if m.showDetail && detail != nil && detail.ID == item.ID {
		return *detail, true
	}
	return item, true
}

func (m *Model) moveSelection(delta int) {
	items := m.visibleItems()
	if len(items) == 0 {
		return
	}
	row := &m.selectedRow
	if m.currentView == ViewFavorites {
		row = &m.favoriteRow
	}
	*row = min(max(*row+delta, 0), len(items)-1)
	m.scheduleRowEnrich()
}

// scheduleRowEnrich debounces a detail fetch for the selected list row when
// it only carries shallow data.
func (m *Model) scheduleRowEnrich() {
	if m.currentView != ViewList {
		return
	}
	if item, ok := m.selectedItem(); ok && !item.IsFull() && item.ID > 0 {
		m.rowDebounce.Call(item.ID)
	}
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.clampSelection()
	m.renderDetail()
}

func (m *Model) clampSelection() {
	n := len(m.snapshot.Items)
	m.selectedRow = min(max(m.selectedRow, 0), max(n-1, 0))
	f := 0
	if m.favs != nil {
		f = m.favs.Len()
	}
	m.favoriteRow = min(max(m.favoriteRow, 0), max(f-1, 0))
}

// visibleItems returns the rows of the current browse view.
func (m Model) visibleItems() []pokeapi.Pokemon {
	if m.currentView == ViewFavorites {
		if m.favs == nil {
			return nil
		}
		return m.favs.Resolve(m.snapshot.Items)
	}
	return m.snapshot.Items
}

func (m Model) selectedItem() (pokeapi.Pokemon, bool) {
	items := m.visibleItems()
	row := m.selectedRow
	if m.currentView == ViewFavorites {
		row = m.favoriteRow
	}
	if row < 0 || row >= len(items) {
		return pokeapi.Pokemon{}, false
	}
	return items[row], true
}

func (m *Model) setFlash(text string, danger bool) {
	m.flash = text
	m.flashDanger = danger
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences failed", slog.String("error", err.Error()))
	}
}

func nextCategory(current string, categories []pokeapi.Category) string {
	options := []string{state.AllCategories}
	for _, c := range categories {
		options = append(options, c.Name)
	}
	for i, name := range options {
		if name == current {
			return options[(i+1)%len(options)]
		}
	}
	return state.AllCategories
}

func nextLevel(level slog.Level) slog.Level {
	switch level {
	case slog.LevelDebug:
		return slog.LevelInfo
	case slog.LevelInfo:
		return slog.LevelWarn
	case slog.LevelWarn:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type queryDoneMsg struct{ err error }

type categoriesDoneMsg struct{ err error }

type detailDoneMsg struct {
	pokemon pokeapi.Pokemon
	err     error
}

type rowDoneMsg struct {
	pokemon pokeapi.Pokemon
	err     error
}

// eventMsg wraps a message delivered through the events channel.
type eventMsg struct{ msg tea.Msg }

type searchSettledMsg string

type rowSettledMsg int

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitForEvent delivers the next debounced event. It is re-armed after each
// delivery.
func waitForEvent(ctx context.Context, events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-events:
			return eventMsg{msg: msg}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) runQuery() tea.Cmd {
	ctx, orch, q := m.ctx, m.orch, m.query
	return func() tea.Msg {
		_, err := orch.Run(ctx, q)
		return queryDoneMsg{err: err}
	}
}

func (m Model) retry() tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		_, err := orch.Retry(ctx)
		return queryDoneMsg{err: err}
	}
}

func (m Model) loadCategories() tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		return categoriesDoneMsg{err: orch.LoadCategories(ctx)}
	}
}

func (m Model) loadDetail(id int) tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		p, err := orch.LoadDetail(ctx, id)
		return detailDoneMsg{pokemon: p, err: err}
	}
}

func (m Model) enrichRow(id int) tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		p, err := orch.EnrichRow(ctx, id)
		return rowDoneMsg{pokemon: p, err: err}
	}
}

func (m Model) loadLogs() tea.Cmd {
	path, level := m.logPath, m.logLevel
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLines, level)
		return logsMsg{entries: entries, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Orchestrator == nil {
		return fmt.Errorf("ui requires a query orchestrator")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
