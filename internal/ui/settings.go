package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderSettings renders the settings panel beside the scene.
func (m Model) renderSettings(height int) string {
	styles := m.theme.Styles()
	snap := m.snapshot
	inner := LayoutPanelWidth - 4

	var b strings.Builder
	b.WriteString(styles.Title.Render("🎄 Settings"))
	b.WriteString("\n\n")

	if snap.Generating {
		b.WriteString(styles.FaintText.Render("a  Adding..."))
	} else {
		b.WriteString(styles.WarningText.Render("a") + styles.Text.Render("  Add elements now"))
	}
	b.WriteString("\n")
	b.WriteString(styles.WarningText.Render("c") + styles.DangerText.Render("  Clear all elements"))
	b.WriteString("\n")
	b.WriteString(styles.WarningText.Render("S") + styles.Text.Render("  Snow: "+onOff(m.snowOn)))
	b.WriteString("\n\n")

	b.WriteString(styles.AccentText.Bold(true).Render("Debug"))
	b.WriteString("\n")
	row := func(label, value string, style lipgloss.Style) {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(style.Render(truncate(value, inner-14)))
		b.WriteString("\n")
	}
	row("Last update", formatStamp(snap.Scene.LastAdditionAt), styles.Text)
	row("Elements", fmt.Sprintf("%d", len(snap.Scene.Elements)), styles.Text)
	if next := snap.NextDue(); next.IsZero() {
		row("Next addition", "due now", styles.Text)
	} else {
		row("Next addition", humanizeDuration(next.Sub(m.now())), styles.Text)
	}
	label, style := m.generatorStatus(styles)
	row("Generator", label, style)
	if snap.LastError != nil {
		row("Last error", snap.LastError.Error(), styles.DangerText)
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.InfoText.Render(truncate(m.status, inner)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Recent activity"))
	b.WriteString("\n")
	if len(m.activity) == 0 {
		b.WriteString(styles.FaintText.Render("No activity yet"))
	}
	for _, e := range m.activity {
		if e.Raw != "" {
			b.WriteString(styles.FaintText.Render(truncate(e.Raw, inner)))
			b.WriteString("\n")
			continue
		}
		stamp := "--:--"
		if !e.Time.IsZero() {
			stamp = e.Time.Local().Format("15:04")
		}
		b.WriteString(styles.FaintText.Render(stamp + " "))
		b.WriteString(styles.LevelStyle(e.Level).Render(truncate(e.Message, inner-6)))
		b.WriteString("\n")
	}

	return styles.Panel.
		Width(LayoutPanelWidth - 2).
		Height(maxInt(height-2, 1)).
		Render(b.String())
}

func (m Model) generatorStatus(styles Styles) (string, lipgloss.Style) {
	switch {
	case m.generatorMode == "placeholder":
		return "placeholders only", styles.MutedText
	case m.snapshot.IsOffline():
		return fmt.Sprintf("offline (%d failures)", m.snapshot.ConsecutiveFailures), styles.DangerText
	case m.generatorMode == "":
		return "unknown", styles.MutedText
	default:
		return m.generatorMode + " ok", styles.SuccessText
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
