// Package ui provides the Bubble Tea terminal view of the Christmas scene.
//
// # Layout
//
//   - header.go: countdown blocks, or the celebration banner once the day arrives
//   - canvas.go: the scene, drawn at percentage positions in stack order, with
//     generated images shown as a framed marker and a progress box
//   - snow.go: the snowfall layer, 30/40/50 flakes depending on terminal width
//   - settings.go: the settings panel (add now, clear, debug info, recent activity)
//   - modal.go: the blocking confirm dialog used before clearing the scene
//   - help.go: help overlay and footer
//
// # State
//
// The model never mutates the scene itself. It reads scene.Snapshot values on a
// one second tick and whenever the manager signals a change, and calls AddNow or
// Reset through tea.Cmds. Reset is handed a Confirmer that blocks on the confirm
// modal's answer channel, so the manager only clears once the user pressed y.
//
// Theme and snow choices are written back to the prefs file.
package ui
