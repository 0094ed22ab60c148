package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

type answer int

const (
	answerNone answer = iota
	answerYes
	answerNo
)

// ConfirmDialog asks a yes/no question before running action.
type ConfirmDialog struct {
	prompt string
	action func() error
	answer answer
}

func NewConfirmDialog(prompt string, action func() error) *ConfirmDialog {
	return &ConfirmDialog{prompt: prompt, action: action}
}

func (c *ConfirmDialog) Title() string { return "Confirm" }

func (c *ConfirmDialog) Answer() answer { return c.answer }

func (c *ConfirmDialog) Render(w, h int) string {
	return truncate(c.prompt, w) + "\n" + dimStyle.Render(truncate("y / enter: yes   n / esc: no", w))
}

func (c *ConfirmDialog) HandleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "y", "Y", "enter":
		c.answer = answerYes
	case "n", "N", "esc":
		c.answer = answerNo
	}
	return true // modal
}

func (c *ConfirmDialog) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	return false
}
