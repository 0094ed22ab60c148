package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/cellbuf"
)

// HitZone is where a mouse press landed on a pane
type HitZone int

const (
	ZoneNone HitZone = iota
	ZoneTitleBar
	ZoneContent
	ZoneBorder
	ZoneResize // bottom-right corner
)

// PaneContent defines what a pane can display
type PaneContent interface {
	// Render returns the content for a w×h area inside the borders.
	Render(w, h int) string

	// HandleKey returns true if the key was consumed.
	HandleKey(msg tea.KeyMsg) bool

	// HandleMouse gets coordinates relative to the content area.
	HandleMouse(x, y int, msg tea.MouseMsg) bool

	Title() string
}

// Pane is a floating window drawn over the grid
type Pane struct {
	ID            string
	X, Y          int
	Width, Height int // including borders
	Focused       bool
	Content       PaneContent

	dragging bool
	resizing bool
	dragOffX int
	dragOffY int
}

const (
	paneMinW = 20
	paneMinH = 5
)

// NewPane creates a pane at x,y with outer size w×h
func NewPane(id string, content PaneContent, x, y, w, h int) *Pane {
	return &Pane{ID: id, X: x, Y: y, Width: w, Height: h, Content: content}
}

// HitZone determines where a point falls within the pane
func (p *Pane) HitZone(x, y int) HitZone {
	if x < p.X || x >= p.X+p.Width || y < p.Y || y >= p.Y+p.Height {
		return ZoneNone
	}
	relX, relY := x-p.X, y-p.Y
	switch {
	case relX == p.Width-1 && relY == p.Height-1:
		return ZoneResize
	case relY == 0:
		return ZoneTitleBar
	case relX == 0 || relX == p.Width-1 || relY == p.Height-1:
		return ZoneBorder
	}
	return ZoneContent
}

func (p *Pane) startDrag(zone HitZone, x, y int) {
	p.dragging = true
	p.resizing = zone == ZoneResize
	p.dragOffX = x - p.X
	p.dragOffY = y - p.Y
}

func (p *Pane) updateDrag(x, y, screenW, screenH int) {
	if p.resizing {
		p.Width = max(x-p.X+1, paneMinW)
		p.Height = max(y-p.Y+1, paneMinH)
		return
	}
	p.X = clamp(x-p.dragOffX, 0, max(screenW-p.Width, 0))
	p.Y = clamp(y-p.dragOffY, 0, max(screenH-1, 0))
}

func (p *Pane) stopDrag() {
	p.dragging = false
	p.resizing = false
}

// Render draws the border, title and content. Focused panes get a double
// border.
func (p *Pane) Render() string {
	tl, tr, bl, br, h, v := "┌", "┐", "└", "┘", "─", "│"
	if p.Focused {
		tl, tr, bl, br, h, v = "╔", "╗", "╚", "╝", "═", "║"
	}

	cw := max(p.Width-2, 1)
	ch := max(p.Height-2, 1)

	title := ""
	if p.Content != nil {
		title = p.Content.Title()
	}
	if r := []rune(title); len(r) > cw-2 {
		title = string(r[:max(cw-2, 0)])
	}

	var content []string
	if p.Content != nil {
		content = strings.Split(p.Content.Render(cw, ch), "\n")
	}

	lines := make([]string, 0, p.Height)
	lines = append(lines, tl+" "+title+" "+strings.Repeat(h, max(cw-lipgloss.Width(title)-2, 0))+tr)
	for i := 0; i < ch; i++ {
		line := ""
		if i < len(content) {
			line = content[i]
		}
		if w := lipgloss.Width(line); w < cw {
			line += strings.Repeat(" ", cw-w)
		}
		lines = append(lines, v+line+v)
	}
	lines = append(lines, bl+strings.Repeat(h, cw)+br)
	return strings.Join(lines, "\n")
}

// PaneManager tracks all floating panes
type PaneManager struct {
	panes     map[string]*Pane
	zOrder    []string // last is topmost
	focusedID string
	screenW   int
	screenH   int
}

// NewPaneManager creates a new pane manager
func NewPaneManager(screenW, screenH int) *PaneManager {
	return &PaneManager{panes: make(map[string]*Pane), screenW: screenW, screenH: screenH}
}

// Add adds a pane on top and focuses it
func (pm *PaneManager) Add(pane *Pane) {
	if _, ok := pm.panes[pane.ID]; ok {
		pm.Remove(pane.ID)
	}
	pm.panes[pane.ID] = pane
	pm.zOrder = append(pm.zOrder, pane.ID)
	pm.Focus(pane.ID)
}

// AddCentered adds a w×h pane in the middle of the screen
func (pm *PaneManager) AddCentered(id string, content PaneContent, w, h int) *Pane {
	w = min(w, pm.screenW)
	h = min(h, pm.screenH)
	p := NewPane(id, content, max((pm.screenW-w)/2, 0), max((pm.screenH-h)/2, 0), w, h)
	pm.Add(p)
	return p
}

// Remove removes a pane; focus moves to the next topmost pane
func (pm *PaneManager) Remove(id string) {
	delete(pm.panes, id)
	for i, pid := range pm.zOrder {
		if pid == id {
			pm.zOrder = append(pm.zOrder[:i], pm.zOrder[i+1:]...)
			break
		}
	}
	if pm.focusedID == id {
		pm.focusedID = ""
		if n := len(pm.zOrder); n > 0 {
			pm.Focus(pm.zOrder[n-1])
		}
	}
}

// Get returns a pane by ID
func (pm *PaneManager) Get(id string) *Pane {
	return pm.panes[id]
}

// Focus focuses a pane and raises it to the top
func (pm *PaneManager) Focus(id string) {
	if p := pm.panes[pm.focusedID]; p != nil {
		p.Focused = false
	}
	pm.focusedID = ""
	p := pm.panes[id]
	if p == nil {
		return
	}
	p.Focused = true
	pm.focusedID = id
	for i, pid := range pm.zOrder {
		if pid == id {
			pm.zOrder = append(append(pm.zOrder[:i:i], pm.zOrder[i+1:]...), id)
			break
		}
	}
}

// Blur leaves every pane open but unfocused
func (pm *PaneManager) Blur() {
	if p := pm.panes[pm.focusedID]; p != nil {
		p.Focused = false
	}
	pm.focusedID = ""
}

// FocusNext cycles focus through the panes
func (pm *PaneManager) FocusNext() {
	if len(pm.zOrder) == 0 {
		return
	}
	// the focused pane is always last in zOrder, so the bottom one is next
	pm.Focus(pm.zOrder[0])
}

// FocusedPane returns the focused pane or nil
func (pm *PaneManager) FocusedPane() *Pane {
	return pm.panes[pm.focusedID]
}

// PaneAt returns the topmost pane at x,y
func (pm *PaneManager) PaneAt(x, y int) *Pane {
	for i := len(pm.zOrder) - 1; i >= 0; i-- {
		if p := pm.panes[pm.zOrder[i]]; p != nil && p.HitZone(x, y) != ZoneNone {
			return p
		}
	}
	return nil
}

// dragging returns the pane being moved or resized
func (pm *PaneManager) dragging() *Pane {
	for _, p := range pm.panes {
		if p.dragging {
			return p
		}
	}
	return nil
}

// UpdateSize keeps panes on screen after a resize
func (pm *PaneManager) UpdateSize(w, h int) {
	pm.screenW, pm.screenH = w, h
	for _, p := range pm.panes {
		p.X = clamp(p.X, 0, max(w-p.Width, 0))
		p.Y = clamp(p.Y, 0, max(h-1, 0))
	}
}

// HasPanes returns true if there are any panes
func (pm *PaneManager) HasPanes() bool {
	return len(pm.zOrder) > 0
}

// Render composites all panes over base, bottom to top
func (pm *PaneManager) Render(base string) string {
	if len(pm.zOrder) == 0 {
		return base
	}
	h := strings.Count(base, "\n") + 1
	buf := cellbuf.NewBuffer(pm.screenW, h)
	cellbuf.SetContent(buf, base)
	for _, id := range pm.zOrder {
		p := pm.panes[id]
		if p == nil {
			continue
		}
		cellbuf.SetContentRect(buf, p.Render(), cellbuf.Rect(p.X, p.Y, p.Width, p.Height))
	}
	return cellbuf.Render(buf)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
