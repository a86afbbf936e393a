package ui

import (
	"fmt"
	"strings"

	"github.com/five82/dexterm/internal/state"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)
	snap := m.snapshot

	parts := []string{bg.Render("dexterm", styles.Logo)}

	switch snap.Status {
	case state.StatusLoading:
		parts = append(parts, bg.Render("● Loading", styles.WarningText))
	case state.StatusError:
		parts = append(parts, bg.Render("● Offline", styles.DangerText))
	case state.StatusLoaded:
		parts = append(parts, bg.Render("● Ready", styles.SuccessText))
	default:
		parts = append(parts, bg.Render("● Idle", styles.MutedText))
	}

	parts = append(parts,
		bg.Render("Total:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", snap.Count), styles.Text))

	if m.favs != nil {
		parts = append(parts,
			bg.Render("★", styles.WarningText)+bg.Space()+bg.Render(fmt.Sprintf("%d", m.favs.Len()), styles.Text))
	}

	if !compact {
		parts = append(parts,
			bg.Render("Sort:", styles.MutedText)+bg.Space()+bg.Render(m.query.Sort.Label(), styles.AccentText))
		if m.query.Category != state.AllCategories {
			parts = append(parts,
				bg.Render("Type:", styles.MutedText)+bg.Space()+bg.Render(m.query.Category, styles.AccentText))
		}
	}

	if snap.IsOffline() {
		parts = append(parts, bg.Render(fmt.Sprintf("%d failures", snap.ConsecutiveFailures), styles.DangerText))
	}
	if !snap.LastUpdated.IsZero() && !compact {
		parts = append(parts, bg.Render(snap.LastUpdated.Format("15:04:05"), styles.FaintText))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, sep))
}

// renderFlash renders the transient message line, or the search input while
// typing.
func (m Model) renderFlash() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)
	var content string
	switch {
	case m.searching:
		content = m.searchInput.View()
	case m.flash != "" && m.flashDanger:
		content = bg.Render(truncate(m.flash, m.width), styles.DangerText)
	case m.flash != "":
		content = bg.Render(truncate(m.flash, m.width), styles.InfoText)
	}
	return bg.FillLine(content, m.width)
}

// renderCommandBar renders the command hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		follow := "Pause"
		if !m.logFollow {
			follow = "Follow"
		}
		commands = []cmd{
			{"Space", follow},
			{"v", "Level " + strings.ToUpper(m.logLevel.String())},
			{"q", "List"},
			{"F", "Favorites"},
			{"?", "More"},
		}
	case ViewFavorites:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Detail"},
			{"f", "Unfavorite"},
			{"X", "Clear all"},
			{"q", "List"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"s", "Sort"},
			{"t", "Type"},
			{"[/]", "Page"},
			{"enter", "Detail"},
			{"f", "Favorite"},
			{"F", "Favorites"},
			{"?", "More"},
		}
		if m.query.HasActiveFilters() {
			commands = append(commands, cmd{"x", "Clear filters"})
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}
