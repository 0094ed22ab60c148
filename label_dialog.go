package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/dennis-eisen/ptzctrl/grid"
	"github.com/dennis-eisen/ptzctrl/panel"
)

type labelResult int

const (
	labelPending labelResult = iota
	labelSave
	labelSaveAndSet
	labelCancel
)

// LabelDialog edits the name and style of one button.
type LabelDialog struct {
	target grid.Key
	input  textinput.Model
	style  int // index into grid.Styles
	keys   KeyMap
	result labelResult
}

// NewLabelDialog pre-fills the dialog from the open edit. A style outside
// the vocabulary starts on btn-secondary.
func NewLabelDialog(e panel.Edit, keys KeyMap) *LabelDialog {
	in := textinput.New()
	in.Prompt = "name: "
	in.CharLimit = 64
	in.Width = 30
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(e.Draft.Name)
	in.Focus()

	style := 0
	for i, s := range grid.Styles {
		if s == grid.StyleSecondary {
			style = i
		}
	}
	for i, s := range grid.Styles {
		if s == e.Draft.Style {
			style = i
		}
	}
	return &LabelDialog{target: e.Target.Key(), input: in, style: style, keys: keys}
}

func (d *LabelDialog) Title() string {
	return fmt.Sprintf("Label PTZ %d / %d", d.target.Camera+1, d.target.Position+1)
}

// Target is the button being edited.
func (d *LabelDialog) Target() grid.Key { return d.target }

// Draft is the name and style as currently entered.
func (d *LabelDialog) Draft() panel.Draft {
	return panel.Draft{Name: d.input.Value(), Style: grid.Styles[d.style]}
}

// Result is what the last key asked for.
func (d *LabelDialog) Result() labelResult { return d.result }

// Reset keeps the dialog open after a rejected confirm.
func (d *LabelDialog) Reset() { d.result = labelPending }

func (d *LabelDialog) Render(w, h int) string {
	d.input.Width = max(w-len(d.input.Prompt)-1, 1)

	lines := []string{d.input.View(), ""}
	for i, s := range grid.Styles {
		marker := "  "
		if i == d.style {
			marker = "▸ "
		}
		label := buttonStyle(s).Render(string(s))
		if i == d.style {
			label = lipgloss.NewStyle().Reverse(true).Render(string(s))
		}
		lines = append(lines, marker+label)
	}
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("%s save · %s save+set · ↑↓ style · %s cancel",
		d.keys.Save.Help().Key, d.keys.SaveAndSet.Help().Key, d.keys.ClosePane.Help().Key)))

	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func (d *LabelDialog) HandleKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, d.keys.SaveAndSet):
		d.result = labelSaveAndSet
		return true
	case key.Matches(msg, d.keys.Save):
		d.result = labelSave
		return true
	case key.Matches(msg, d.keys.ClosePane):
		d.result = labelCancel
		return true
	case msg.Type == tea.KeyUp:
		d.style = (d.style + len(grid.Styles) - 1) % len(grid.Styles)
		return true
	case msg.Type == tea.KeyDown:
		d.style = (d.style + 1) % len(grid.Styles)
		return true
	case msg.Type == tea.KeyTab:
		return false
	}
	d.input, _ = d.input.Update(msg)
	return true
}

// HandleMouse picks a style by clicking it.
func (d *LabelDialog) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	if i := y - 2; i >= 0 && i < len(grid.Styles) {
		d.style = i
		return true
	}
	return false
}
