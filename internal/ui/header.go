package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tinsel/internal/countdown"
)

// renderHeader renders the countdown above the scene.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	rem := m.countdown.Remaining(m.now())
	surface := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Align(lipgloss.Center)

	if rem.Arrived {
		banner := styles.Title.Render("🎅 IT'S CHRISTMAS! 🎄")
		return surface.Padding(1, 0).Render(banner)
	}

	if m.width < LayoutCompactWidth {
		line := styles.Title.Render("Christmas Countdown ") +
			styles.Text.Render(fmt.Sprintf("%dd %02dh %02dm %02ds", rem.Days, rem.Hours, rem.Minutes, rem.Seconds))
		return surface.Render(line)
	}

	blocks := []string{
		m.timeBlock(rem.Days, "Days"),
		m.timeBlock(rem.Hours, "Hours"),
		m.timeBlock(rem.Minutes, "Minutes"),
		m.timeBlock(rem.Seconds, "Seconds"),
	}
	spaced := make([]string, 0, len(blocks)*2-1)
	for i, b := range blocks {
		if i > 0 {
			spaced = append(spaced, "  ")
		}
		spaced = append(spaced, b)
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.Title.Render("Christmas Countdown! 🎅"),
		lipgloss.JoinHorizontal(lipgloss.Top, spaced...),
		styles.MutedText.Render(subtitle(m.countdown)),
	)
	return surface.Render(body)
}

func (m Model) timeBlock(value int, label string) string {
	styles := m.theme.Styles()
	return lipgloss.JoinVertical(lipgloss.Center,
		styles.Block.Render(fmt.Sprintf("%02d", value)),
		styles.AccentText.Render(label),
	)
}

func subtitle(t countdown.Target) string {
	at := t.At(2000)
	return fmt.Sprintf("Until %s on %s %d! ⭐", at.Format("3:04 PM"), at.Month(), t.Day)
}
