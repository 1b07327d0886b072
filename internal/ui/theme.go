package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // canvas, behind the scene
	Surface    string // header, footer and panels
	SurfaceAlt string // countdown blocks

	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string // titles and highlights
	Success string
	Warning string
	Danger  string
	Info    string

	Snow  string // snowflakes
	Image string // generated image markers
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Block: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Bold(true).
			Padding(0, 2),

		Panel: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Snow: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Snow)),

		Image: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Image)).
			Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Base
	Background lipgloss.Style
	Surface    lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	// Components
	Title  lipgloss.Style
	Block  lipgloss.Style
	Panel  lipgloss.Style
	Footer lipgloss.Style
	Snow   lipgloss.Style
	Image  lipgloss.Style
}

// LevelStyle returns the style for a log level in the activity list.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	switch level {
	case "error", "dpanic", "panic", "fatal":
		return s.DangerText
	case "warn":
		return s.WarningText
	case "debug":
		return s.FaintText
	default:
		return s.InfoText
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Festive":    festiveTheme(),
	"Midnight":   midnightTheme(),
	"Candy Cane": candyCaneTheme(),
}

var themeOrder = []string{"Festive", "Midnight", "Candy Cane"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return festiveTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	out := make([]string, len(themeOrder))
	copy(out, themeOrder)
	return out
}

func festiveTheme() Theme {
	// Deep pine night sky with red blocks and gold lettering.
	return Theme{
		Name: "Festive",

		Background: "#0b1d2a",
		Surface:    "#102a3a",
		SurfaceAlt: "#b3202a", // christmas red

		Border:      "#2f5d50",
		BorderFocus: "#f2c14e",

		Text:    "#f8f4e3",
		Muted:   "#a8b8b0",
		Faint:   "#6c8077",
		Accent:  "#f2c14e", // gold
		Success: "#3fa34d", // pine green
		Warning: "#f29e4c",
		Danger:  "#e63946",
		Info:    "#8ecae6",

		Snow:  "#ffffff",
		Image: "#f2c14e",
	}
}

func midnightTheme() Theme {
	return Theme{
		Name: "Midnight",

		Background: "#05070f",
		Surface:    "#0d1324",
		SurfaceAlt: "#1d2a4d",

		Border:      "#2a3a66",
		BorderFocus: "#9fb4ff",

		Text:    "#e6ebff",
		Muted:   "#9aa5c4",
		Faint:   "#5d6787",
		Accent:  "#c0c8e8", // silver
		Success: "#7bd389",
		Warning: "#f6c177",
		Danger:  "#eb6f92",
		Info:    "#9ccfd8",

		Snow:  "#dfe6ff",
		Image: "#9fb4ff",
	}
}

func candyCaneTheme() Theme {
	return Theme{
		Name: "Candy Cane",

		Background: "#fdf6f0",
		Surface:    "#f4e1d8",
		SurfaceAlt: "#c1121f",

		Border:      "#e5989b",
		BorderFocus: "#c1121f",

		Text:    "#2b2d42",
		Muted:   "#6d6875",
		Faint:   "#a5a1aa",
		Accent:  "#c1121f",
		Success: "#2a9d8f",
		Warning: "#e76f51",
		Danger:  "#9d0208",
		Info:    "#457b9d",

		Snow:  "#8d99ae",
		Image: "#c1121f",
	}
}
