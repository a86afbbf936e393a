package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Header, flash line and command bar.
const chromeHeight = 3

// renderMain renders header, body, flash line and command bar.
func (m Model) renderMain() string {
	var body string
	switch m.currentView {
	case ViewLogs:
		body = m.renderLogs()
	default:
		body = m.renderBrowse()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFlash(),
		m.renderCommandBar(),
	)
}

// renderBrowse lays out the list (or favorites) with the optional detail pane.
func (m Model) renderBrowse() string {
	l := m.layout()
	list := m.renderTitledBox(m.listTitle(), m.renderRows(l.listHeight-2, l.listWidth-2), l.listWidth, l.listHeight, !m.focusDetail)
	if !m.showDetail {
		return list
	}
	detail := m.renderTitledBox(m.detailTitle(), m.detailViewport.View(), l.detailWidth, l.detailHeight, m.focusDetail)
	if l.stacked {
		return lipgloss.JoinVertical(lipgloss.Left, list, detail)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

type paneLayout struct {
	listWidth, listHeight     int
	detailWidth, detailHeight int
	stacked                   bool
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight, 4)
}

// layout splits the body between list and detail. Narrow terminals stack the
// detail pane under the list.
func (m Model) layout() paneLayout {
	h := m.bodyHeight()
	if !m.showDetail {
		return paneLayout{listWidth: m.width, listHeight: h}
	}
	if m.width < LayoutCompactWidth {
		top := h / 2
		return paneLayout{
			listWidth: m.width, listHeight: top,
			detailWidth: m.width, detailHeight: h - top,
			stacked: true,
		}
	}
	left := m.width * 55 / 100
	return paneLayout{
		listWidth: left, listHeight: h,
		detailWidth: m.width - left, detailHeight: h,
	}
}

func (m *Model) resizeViewports() {
	l := m.layout()
	if l.detailWidth > 0 {
		if m.detailViewport.Width == 0 {
			m.detailViewport = viewport.New(l.detailWidth-2, l.detailHeight-2)
		}
		m.detailViewport.Width = max(l.detailWidth-2, 1)
		m.detailViewport.Height = max(l.detailHeight-2, 1)
	}
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(m.width-2, m.bodyHeight()-2)
	}
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.bodyHeight()-2, 1)
	m.renderDetail()
	m.updateLogViewport()
}

// renderTitledBox draws a single-line border with the title set into the top
// edge, filling the inside with the panel background.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	inner := width - 2
	title = truncate(title, max(inner-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((inner-titleLen-2)/2, 0)
	rightPad := max(inner-titleLen-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Sep(" ") + bg.Render(title, titleStyle) + bg.Sep(" ") +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", inner), borderStyle) +
		bg.Render("┘", borderStyle)

	fill := lipgloss.NewStyle().Width(inner).MaxWidth(inner).MaxHeight(1).Background(lipgloss.Color(bgColor))
	lines := strings.Split(content, "\n")
	rows := make([]string, 0, height)
	rows = append(rows, top)
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, bg.Render("│", borderStyle)+fill.Render(line)+bg.Render("│", borderStyle))
	}
	rows = append(rows, bottom)
	return strings.Join(rows, "\n")
}

// panelStyles returns the text styles for the box background currently used
// by a pane.
func (m Model) panelStyles(focused bool) (Styles, BgStyle) {
	color := m.theme.SurfaceAlt
	if focused {
		color = m.theme.FocusBg
	}
	return m.theme.Styles().WithBackground(color), NewBgStyle(color)
}
