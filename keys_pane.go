package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// keysMarkdown lists every enabled binding as a markdown table per section.
func keysMarkdown(km KeyMap) string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Grid", []key.Binding{km.Activate, km.Up, km.Down, km.Left, km.Right, km.ToggleProtection}},
		{"Modes", []key.Binding{km.ModeRecall, km.ModeSet, km.ModeLabel}},
		{"Label dialog", []key.Binding{km.Save, km.SaveAndSet, km.ClosePane}},
		{"Panes", []key.Binding{km.CommandPalette, km.ToggleDebug, km.ShowKeys, km.CyclePane, km.ClosePane, km.Quit}},
	}

	var sb strings.Builder
	sb.WriteString("# Keys\n")
	for _, s := range sections {
		fmt.Fprintf(&sb, "\n## %s\n\n| Keys | Action |\n|---|---|\n", s.title)
		for _, b := range s.bindings {
			if !b.Enabled() {
				continue
			}
			labels := make([]string, 0, len(b.Keys()))
			for _, k := range b.Keys() {
				labels = append(labels, "`"+keyLabel(k)+"`")
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", strings.Join(labels, " "), b.Help().Desc)
		}
	}
	return sb.String()
}

// RenderMarkdown pre-renders markdown for terminal display at the given width.
func RenderMarkdown(markdown string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// KeysPane shows the key bindings
type KeysPane struct {
	lines  []string
	scroll int
	height int
}

func NewKeysPane(km KeyMap, width int) *KeysPane {
	rendered := RenderMarkdown(keysMarkdown(km), width)
	return &KeysPane{lines: strings.Split(strings.TrimRight(rendered, "\n"), "\n")}
}

func (k *KeysPane) Title() string {
	return "keys"
}

func (k *KeysPane) Render(w, h int) string {
	k.height = h
	k.clampScroll()
	end := min(k.scroll+h, len(k.lines))
	return strings.Join(k.lines[k.scroll:end], "\n")
}

func (k *KeysPane) HandleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "up", "k":
		k.scroll--
	case "down", "j":
		k.scroll++
	case "pgup":
		k.scroll -= max(k.height, 1)
	case "pgdown":
		k.scroll += max(k.height, 1)
	default:
		return false
	}
	k.clampScroll()
	return true
}

func (k *KeysPane) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		k.scroll -= 3
	case tea.MouseButtonWheelDown:
		k.scroll += 3
	default:
		return false
	}
	k.clampScroll()
	return true
}

func (k *KeysPane) clampScroll() {
	k.scroll = clamp(k.scroll, 0, max(len(k.lines)-k.height, 0))
}
