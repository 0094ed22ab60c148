package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for ptzctrl
type KeyMap struct {
	// Grid
	Activate         key.Binding
	ModeRecall       key.Binding
	ModeSet          key.Binding
	ModeLabel        key.Binding
	ToggleProtection key.Binding

	// Panes
	CommandPalette key.Binding
	ToggleDebug    key.Binding
	ShowKeys       key.Binding
	CyclePane      key.Binding
	ClosePane      key.Binding
	Quit           key.Binding

	// Label dialog
	Save       key.Binding
	SaveAndSet key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

// ShortHelp returns keybindings for the short help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.ModeRecall, k.ModeSet, k.ModeLabel, k.CommandPalette, k.ShowKeys, k.Quit}
}

// FullHelp returns keybindings for the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Activate, k.ModeRecall, k.ModeSet, k.ModeLabel, k.ToggleProtection},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Save, k.SaveAndSet, k.ClosePane, k.CyclePane},
		{k.CommandPalette, k.ToggleDebug, k.ShowKeys, k.Quit},
	}
}
