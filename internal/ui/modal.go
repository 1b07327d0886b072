package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal answers a blocking yes/no question. The answer channel must be
// buffered so Update never blocks the program loop.
type confirmModal struct {
	title  string
	prompt string
	answer chan<- bool
}

func newConfirmModal(title, prompt string, answer chan<- bool) *confirmModal {
	return &confirmModal{title: title, prompt: prompt, answer: answer}
}

// Update implements Modal. The confirm binding answers yes; any other key answers no.
func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	c.reply(key.Matches(keyMsg, keys.Confirm))
	if keyMsg.String() == "ctrl+c" {
		return nil, tea.Quit, true
	}
	return nil, nil, true
}

func (c *confirmModal) reply(yes bool) {
	if c.answer == nil {
		return
	}
	select {
	case c.answer <- yes:
	default:
	}
	c.answer = nil
}

// View implements Modal.
func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Title.Render(c.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(c.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.DangerText.Render("y") + styles.MutedText.Render(" yes    ") +
		styles.Text.Render("any other key") + styles.MutedText.Render(" no"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Width(44).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
