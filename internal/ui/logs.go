package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/dexterm/internal/logtail"
)

// updateLogViewport re-renders the log entries into the viewport.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		return
	}
	m.logViewport.SetContent(m.logContent())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) logContent() string {
	styles, bg := m.panelStyles(true)
	if m.logErr != nil {
		return bg.Render("Unable to read log: "+m.logErr.Error(), styles.DangerText)
	}
	if m.logPath == "" {
		return bg.Render("Logging to file is disabled.", styles.MutedText)
	}
	if len(m.logEntries) == 0 {
		return bg.Render(fmt.Sprintf("No entries at %s or above.", m.logLevel), styles.MutedText)
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, formatLogEntry(e, styles, bg))
	}
	return strings.Join(lines, "\n")
}

func formatLogEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if e.Time.IsZero() && len(e.Attrs) == 0 {
		return bg.Render(e.Raw, styles.Text)
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(fmt.Sprintf("%-5s", e.Level.String()), levelStyle(e.Level, styles)))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(e.Message, styles.Text))
	for _, a := range e.Attrs {
		b.WriteString(bg.Space())
		b.WriteString(bg.Render(a.Key+"=", styles.MutedText))
		b.WriteString(bg.Render(a.Value, styles.InfoText))
	}
	return b.String()
}

func levelStyle(level slog.Level, styles Styles) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText
	case level >= slog.LevelInfo:
		return styles.SuccessText
	default:
		return styles.FaintText
	}
}

// renderLogs renders the application log view.
func (m Model) renderLogs() string {
	title := "Log · " + strings.ToUpper(m.logLevel.String()) + "+"
	if m.logFollow {
		title += " · following"
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.bodyHeight(), true)
}
