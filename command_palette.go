package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/sahilm/fuzzy"
)

// Palette command names
const (
	cmdRecallMode    = "recall mode"
	cmdSetMode       = "set mode"
	cmdLabelMode     = "label mode"
	cmdPowerOn       = "power on"
	cmdPowerOff      = "power off"
	cmdFocusLock     = "focus lock"
	cmdFocusUnlock   = "focus unlock"
	cmdProtectionOn  = "protection on"
	cmdProtectionOff = "protection off"
	cmdClearAll      = "clear all"
	cmdDebug         = "debug log"
	cmdKeys          = "keys"
	cmdQuit          = "quit"
)

// Command represents an executable command in the palette
type Command struct {
	Name string
	Help string
}

// DefaultCommands lists everything the palette offers.
func DefaultCommands() []Command {
	return []Command{
		{cmdRecallMode, "buttons move cameras"},
		{cmdSetMode, "buttons store positions"},
		{cmdLabelMode, "buttons open the label editor"},
		{cmdPowerOn, "power all cameras on"},
		{cmdPowerOff, "power all cameras off"},
		{cmdFocusLock, "lock focus on all cameras"},
		{cmdFocusUnlock, "unlock focus on all cameras"},
		{cmdProtectionOn, "block recalls on program cameras"},
		{cmdProtectionOff, "allow recalls on program cameras"},
		{cmdClearAll, "reset every label and style"},
		{cmdDebug, "toggle the log pane"},
		{cmdKeys, "show key bindings"},
		{cmdQuit, "exit ptzctrl"},
	}
}

// commandSource lets fuzzy match against "name help".
type commandSource []Command

func (s commandSource) String(i int) string { return s[i].Name + " " + s[i].Help }
func (s commandSource) Len() int { return len(s) }

// CommandPalette is a fuzzy-searchable command list
type CommandPalette struct {
	commands       []Command
	filtered       []Command
	query          string
	selected       int
	scrollOffset   int    // First visible item index
	SelectedAction string // Set when Enter pressed
}

// NewCommandPalette creates a command palette with the given commands
func NewCommandPalette(commands []Command) *CommandPalette {
	return &CommandPalette{
		commands: commands,
		filtered: commands,
	}
}

// filter ranks commands by fuzzy score; an empty query keeps the list order.
func (c *CommandPalette) filter() {
	if c.query == "" {
		c.filtered = c.commands
	} else {
		matches := fuzzy.FindFrom(c.query, commandSource(c.commands))
		c.filtered = make([]Command, len(matches))
		for i, match := range matches {
			c.filtered[i] = c.commands[match.Index]
		}
	}
	c.selected = clamp(c.selected, 0, max(len(c.filtered)-1, 0))
	c.scrollOffset = 0
}

func (c *CommandPalette) Title() string {
	return "Commands"
}

func (c *CommandPalette) Render(w, h int) string {
	var sb strings.Builder

	promptStyle := lipgloss.NewStyle().Foreground(AccentColor)
	sb.WriteString(promptStyle.Render(": "))
	sb.WriteString(c.query)
	sb.WriteString(cursorStyle.Render(" "))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", w))
	sb.WriteString("\n")

	selectedStyle := lipgloss.NewStyle().Background(AccentColor).Foreground(lipgloss.Color("0"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	listH := max(h-2, 1)
	c.AdjustScroll(listH)

	nameW := max(w/3, 14)
	rows := 0
	for i := c.scrollOffset; i < len(c.filtered) && rows < listH; i++ {
		cmd := c.filtered[i]
		name := padRight(truncate(cmd.Name, nameW), nameW)
		if i == c.selected {
			name = selectedStyle.Render(name)
		}
		help := truncate(cmd.Help, max(w-nameW-1, 0))
		sb.WriteString(name + " " + helpStyle.Render(help))
		rows++
		if rows < listH {
			sb.WriteString("\n")
		}
	}
	if len(c.filtered) == 0 {
		sb.WriteString(dimStyle.Render("no match"))
	}
	return sb.String()
}

func (c *CommandPalette) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp:
		if c.selected > 0 {
			c.selected--
		}
		return true

	case tea.KeyDown:
		if c.selected < len(c.filtered)-1 {
			c.selected++
		}
		return true

	case tea.KeyEnter:
		if c.selected >= 0 && c.selected < len(c.filtered) {
			c.SelectedAction = c.filtered[c.selected].Name
		}
		return true

	case tea.KeyBackspace:
		if r := []rune(c.query); len(r) > 0 {
			c.query = string(r[:len(r)-1])
			c.filter()
		}
		return true

	case tea.KeySpace:
		c.query += " "
		c.filter()
		return true

	case tea.KeyRunes:
		if msg.Alt {
			return false
		}
		c.query += string(msg.Runes)
		c.filter()
		return true
	}

	// Esc, Tab and the rest go to the global bindings
	return false
}

// AdjustScroll ensures selected item is visible given the list height
func (c *CommandPalette) AdjustScroll(listH int) {
	listH = max(listH, 1)
	if c.selected >= c.scrollOffset+listH {
		c.scrollOffset = c.selected - listH + 1
	}
	if c.selected < c.scrollOffset {
		c.scrollOffset = c.selected
	}
}

func (c *CommandPalette) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || y < 2 {
		return false
	}
	idx := c.scrollOffset + y - 2 // query line and separator
	if idx >= 0 && idx < len(c.filtered) {
		c.selected = idx
		c.SelectedAction = c.filtered[idx].Name
		return true
	}
	return false
}
