package ui

import (
	"fmt"
	"strings"
)

const (
	// maxBaseStat scales stat bars; no base stat exceeds it.
	maxBaseStat  = 255
	statBarWidth = 20
)

var statLabels = map[string]string{
	"hp":              "HP",
	"attack":          "Attack",
	"defense":         "Defense",
	"special-attack":  "Sp. Atk",
	"special-defense": "Sp. Def",
	"speed":           "Speed",
}

func (m Model) detailTitle() string {
	if d := m.snapshot.Detail; d != nil {
		return d.DisplayID() + " " + d.DisplayName()
	}
	return "Detail"
}

// renderDetail refreshes the detail viewport from the current snapshot.
func (m *Model) renderDetail() {
	if !m.showDetail || m.detailViewport.Width == 0 {
		return
	}
	m.detailViewport.SetContent(m.detailContent())
}

func (m Model) detailContent() string {
	styles, bg := m.panelStyles(m.focusDetail)
	snap := m.snapshot
	width := m.detailViewport.Width

	if snap.Detail == nil {
		switch {
		case snap.DetailLoading:
			return bg.Render("Loading...", styles.MutedText)
		case snap.DetailError != nil:
			return bg.Render(truncate(snap.DetailError.Error(), width), styles.DangerText)
		default:
			return bg.Render("Select a Pokémon and press enter.", styles.MutedText)
		}
	}

	p := *snap.Detail
	var b strings.Builder

	name := bg.Render(p.DisplayName(), styles.Text.Bold(true)) + bg.Space() + bg.Render(p.DisplayID(), styles.MutedText)
	if m.favs != nil && m.favs.IsFavorite(p.ID) {
		name += bg.Space() + bg.Render("★", styles.WarningText)
	}
	b.WriteString(name)
	b.WriteString("\n")

	if names := p.TypeNames(); len(names) > 0 {
		badges := make([]string, 0, len(names))
		for _, t := range names {
			badges = append(badges, styles.TypeBadge(t).Render(t))
		}
		b.WriteString(strings.Join(badges, bg.Space()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(bg.Render(padRight(label, 10), styles.MutedText))
		b.WriteString(bg.Render(value, styles.Text))
		b.WriteString("\n")
	}
	field("Height", formatHeight(p.Height))
	field("Weight", formatWeight(p.Weight))
	field("Base exp", formatBaseExp(p))

	if len(p.Abilities) > 0 {
		b.WriteString("\n")
		b.WriteString(bg.Render("Abilities", styles.AccentText.Bold(true)))
		b.WriteString("\n")
		for _, a := range p.Abilities {
			b.WriteString(bg.Render("  "+a.Ability.Name, styles.Text))
			if a.IsHidden {
				b.WriteString(bg.Render(" (hidden)", styles.FaintText))
			}
			b.WriteString("\n")
		}
	}

	if len(p.Stats) > 0 {
		b.WriteString("\n")
		b.WriteString(bg.Render("Base stats", styles.AccentText.Bold(true)))
		b.WriteString("\n")
		for _, s := range p.Stats {
			b.WriteString(bg.Render(padRight(statLabel(s.Stat.Name), 9), styles.MutedText))
			b.WriteString(bg.Render(fmt.Sprintf("%4d ", s.BaseStat), styles.Text))
			b.WriteString(bg.Render(statBar(s.BaseStat, statBarWidth), styles.SuccessText))
			b.WriteString("\n")
		}
	}

	if snap.DetailError != nil {
		b.WriteString("\n")
		b.WriteString(bg.Render("Refresh failed: "+snap.DetailError.Error(), styles.DangerText))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatHeight renders decimetres as metres.
func formatHeight(dm int) string {
	if dm <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f m", float64(dm)/10)
}

// formatWeight renders hectograms as kilograms.
func formatWeight(hg int) string {
	if hg <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f kg", float64(hg)/10)
}

func statLabel(name string) string {
	if label, ok := statLabels[name]; ok {
		return label
	}
	return name
}

func statBar(value, width int) string {
	filled := min(max(value*width/maxBaseStat, 0), width)
	if value > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
