package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DebugPane tails the log buffer in a viewport
type DebugPane struct {
	viewport viewport.Model
	logs     *logBuffer
	lastLen  int // Track log length for auto-scroll
}

// NewDebugPane creates a debug pane backed by the given buffer
func NewDebugPane(logs *logBuffer) *DebugPane {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true
	return &DebugPane{viewport: vp, logs: logs}
}

func (d *DebugPane) Title() string {
	return "debug"
}

func (d *DebugPane) Render(w, h int) string {
	d.viewport.Width = w
	d.viewport.Height = h

	var lines []string
	if d.logs != nil {
		lines = d.logs.Lines()
	}
	d.viewport.SetContent(strings.Join(lines, "\n"))

	// Follow the tail only when something new arrived
	if len(lines) != d.lastLen {
		d.viewport.GotoBottom()
		d.lastLen = len(lines)
	}

	return d.viewport.View()
}

func (d *DebugPane) HandleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "down", "pgup", "pgdown", "home", "end":
	default:
		return false
	}
	d.viewport, _ = d.viewport.Update(msg)
	return true
}

func (d *DebugPane) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd != nil
}
