package ui

import (
	"fmt"
	"strings"

	"github.com/five82/dexterm/internal/pokeapi"
	"github.com/five82/dexterm/internal/state"
)

// Column widths for the list table.
const (
	colCursor = 2
	colStar   = 2
	colID     = 6
	colName   = 14
	colTypes  = 18
	colExp    = 5
)

// listTitle describes the current query in the list box border.
func (m Model) listTitle() string {
	if m.currentView == ViewFavorites {
		n := 0
		if m.favs != nil {
			n = m.favs.Len()
		}
		return fmt.Sprintf("Favorites (%d)", n)
	}
	if term := m.query.SearchTerm(); term != "" {
		return fmt.Sprintf("Search: %s", term)
	}
	title := fmt.Sprintf("Pokédex · page %d/%d", m.query.Page, m.snapshot.Pages(m.orch.PageSize()))
	if m.query.Category != state.AllCategories {
		title += " · " + m.query.Category
	}
	return title
}

// renderRows renders the table body for the list or favorites view, scrolled
// so the selected row stays visible.
func (m Model) renderRows(height, width int) string {
	styles, bg := m.panelStyles(!m.focusDetail)
	if height <= 0 {
		return ""
	}

	if msg, danger := m.emptyMessage(); msg != "" {
		style := styles.MutedText
		if danger {
			style = styles.DangerText
		}
		return "\n" + bg.Spaces(1) + bg.Render(truncate(msg, width-2), style)
	}

	items := m.visibleItems()
	selected := m.selectedRow
	if m.currentView == ViewFavorites {
		selected = m.favoriteRow
	}
	showTypes := width >= LayoutTypesWidth

	lines := []string{bg.Render(m.headerRow(showTypes), styles.FaintText)}
	start := 0
	if rows := height - 1; selected >= rows {
		start = selected - rows + 1
	}
	for i := start; i < len(items) && len(lines) < height; i++ {
		row := m.formatRow(items[i], i == selected, showTypes)
		if i == selected {
			lines = append(lines, styles.Selected.Width(width).Render(row))
			continue
		}
		lines = append(lines, bg.Render(row, styles.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) headerRow(showTypes bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", colCursor+colStar))
	b.WriteString(padRight("No.", colID))
	b.WriteString(padRight("Name", colName))
	if showTypes {
		b.WriteString(padRight("Types", colTypes))
	}
	b.WriteString(fmt.Sprintf("%*s", colExp, "Exp"))
	return b.String()
}

func (m Model) formatRow(p pokeapi.Pokemon, selected, showTypes bool) string {
	var b strings.Builder
	if selected {
		b.WriteString(padRight("›", colCursor))
	} else {
		b.WriteString(strings.Repeat(" ", colCursor))
	}
	if m.favs != nil && m.favs.IsFavorite(p.ID) {
		b.WriteString(padRight("★", colStar))
	} else {
		b.WriteString(strings.Repeat(" ", colStar))
	}
	b.WriteString(padRight(p.DisplayID(), colID))
	b.WriteString(padRight(p.DisplayName(), colName))
	if showTypes {
		b.WriteString(padRight(formatTypes(p), colTypes))
	}
	b.WriteString(fmt.Sprintf("%*s", colExp, formatBaseExp(p)))
	return b.String()
}

// emptyMessage returns the placeholder text when the view has no rows. The
// bool is true for error states.
func (m Model) emptyMessage() (string, bool) {
	if m.currentView == ViewFavorites {
		if m.favs == nil || m.favs.Len() == 0 {
			return "No favorites yet. Press f on a row to add one.", false
		}
		return "", false
	}
	snap := m.snapshot
	switch {
	case snap.Status == state.StatusError:
		return fmt.Sprintf("Failed to load list. Press r to retry. %v", snap.LastError), true
	case len(snap.Items) > 0:
		return "", false
	case snap.Status == state.StatusLoading || snap.Status == state.StatusIdle:
		return "Loading...", false
	case m.query.HasActiveFilters():
		return "No Pokémon match. Press x to clear filters.", false
	default:
		return "No Pokémon found.", false
	}
}

func formatTypes(p pokeapi.Pokemon) string {
	names := p.TypeNames()
	if len(names) == 0 {
		return "—"
	}
	return strings.Join(names, "/")
}

func formatBaseExp(p pokeapi.Pokemon) string {
	if p.BaseExperience == nil {
		return "—"
	}
	return fmt.Sprintf("%d", *p.BaseExperience)
}
