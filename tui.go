package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/dennis-eisen/ptzctrl/grid"
	"github.com/dennis-eisen/ptzctrl/panel"
	"github.com/dennis-eisen/ptzctrl/ptz"
)

// AccentColor is the highlight colour, set from the config.
var AccentColor = lipgloss.Color("63")

var (
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	rejectStyle  = lipgloss.NewStyle().Background(lipgloss.Color("160")).Foreground(lipgloss.Color("231"))
	successStyle = lipgloss.NewStyle().Background(lipgloss.Color("34")).Foreground(lipgloss.Color("231"))

	tallyStyles = map[grid.TallyState]lipgloss.Style{
		grid.TallyIdle:    lipgloss.NewStyle().Bold(true),
		grid.TallyPreview: lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("28")).Foreground(lipgloss.Color("231")),
		grid.TallyProgram: lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("160")).Foreground(lipgloss.Color("231")),
	}

	buttonColors = map[grid.Style]string{
		grid.StylePrimary:   "33",
		grid.StyleSecondary: "250",
		grid.StyleSuccess:   "34",
		grid.StyleDanger:    "160",
		grid.StyleWarning:   "214",
		grid.StyleInfo:      "44",
		grid.StyleLight:     "255",
		grid.StyleDark:      "242",
	}
)

const (
	colWidth    = 18
	headerLines = 3 // PTZ n, address, rule
	statusLines = 1
)

// buttonStyle colours a label by its class. Classes outside the known
// vocabulary render like btn-secondary.
func buttonStyle(s grid.Style) lipgloss.Style {
	c, ok := buttonColors[s]
	if !ok {
		c = buttonColors[grid.StyleSecondary]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// serverMsg wraps one result of Channel.Recv.
type serverMsg struct {
	msg ptz.Message
	err error
}

// connStateMsg reports a change from the redialer.
type connStateMsg ptz.State

// flashDoneMsg ends the feedback flash with the same seq.
type flashDoneMsg struct{ seq int }

type flash struct {
	key grid.Key
	fb  panel.Feedback
	seq int
}

// Model holds all state for the TUI.
type Model struct {
	ctrl   *panel.Controller
	events <-chan tea.Msg
	log    *zap.Logger
	logs   *logBuffer

	conn    ptz.State
	lastErr string

	// Grid cursor: group index, button index within the group
	col, row int

	flash    flash
	flashSeq int

	panes *PaneManager
	help  help.Model
	keys  KeyMap

	profile colorprofile.Profile

	width  int
	height int
}

// NewModel starts the reader goroutine on conn and returns the model that
// consumes it. If conn is a *ptz.Redialer its state changes are delivered
// on the same stream.
func NewModel(conn ptz.Channel, ctrl *panel.Controller, logs *logBuffer, cfg Config, profile colorprofile.Profile, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ch := make(chan tea.Msg)
	if r, ok := conn.(*ptz.Redialer); ok {
		r.OnStateChange = func(s ptz.State) { ch <- connStateMsg(s) }
	}
	go func() {
		for {
			msg, err := conn.Recv()
			ch <- serverMsg{msg: msg, err: err}
			if err != nil && !errors.Is(err, ptz.ErrMalformed) {
				close(ch)
				return
			}
		}
	}()

	return Model{
		ctrl:    ctrl,
		events:  ch,
		log:     log,
		logs:    logs,
		conn:    ptz.StateConnected,
		panes:   NewPaneManager(80, 24), // Updated on WindowSizeMsg
		help:    help.New(),
		keys:    cfg.ToKeyMap(),
		profile: profile,
		width:   80,
		height:  24,
	}
}

// waitFor waits for the next message from the reader goroutine.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) Init() tea.Cmd {
	return waitFor(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panes.UpdateSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case serverMsg:
		return m.handleServer(msg)

	case connStateMsg:
		m.conn = ptz.State(msg)
		if m.conn == ptz.StateConnected {
			m.lastErr = ""
		}
		return m, waitFor(m.events)

	case flashDoneMsg:
		if msg.seq == m.flash.seq {
			m.flash = flash{}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) modeFor(msg tea.KeyMsg) (panel.Mode, bool) {
	switch {
	case key.Matches(msg, m.keys.ModeRecall):
		return panel.ModeRecall, true
	case key.Matches(msg, m.keys.ModeSet):
		return panel.ModeSet, true
	case key.Matches(msg, m.keys.ModeLabel):
		return panel.ModeLabel, true
	}
	return 0, false
}

func paneContent(p *Pane) PaneContent {
	if p == nil {
		return nil
	}
	return p.Content
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	fp := m.panes.FocusedPane()

	// Mode shortcuts hold a modifier, so they win over every pane except a
	// modal confirm.
	if _, modal := paneContent(fp).(*ConfirmDialog); !modal {
		if mode, ok := m.modeFor(msg); ok {
			m.selectMode(mode)
			return m, nil
		}
	}

	// Focused pane sees keys first so text inputs can take letters
	if fp != nil && fp.Content != nil {
		if fp.Content.HandleKey(msg) {
			return m.afterPane(fp)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleDebug):
		m.toggleDebugPane()
		return m, nil

	case key.Matches(msg, m.keys.ShowKeys):
		m.toggleKeysPane()
		return m, nil

	case key.Matches(msg, m.keys.CommandPalette):
		m.openCommandPalette()
		return m, nil

	case key.Matches(msg, m.keys.CyclePane):
		m.panes.FocusNext()
		return m, nil

	case key.Matches(msg, m.keys.ClosePane):
		if fp := m.panes.FocusedPane(); fp != nil {
			m.closePane(fp.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleProtection):
		v := "on"
		if m.ctrl.Protected() {
			v = "off"
		}
		m.report(m.ctrl.SetProtection(v))
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(0, -1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(0, 1)
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1, 0)
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		if k, ok := m.selected(); ok {
			return m.activate(k)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if p := m.panes.dragging(); p != nil {
		switch msg.Action {
		case tea.MouseActionMotion:
			p.updateDrag(msg.X, msg.Y, m.width, m.height)
		case tea.MouseActionRelease:
			p.stopDrag()
		}
		return m, nil
	}

	press := msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft

	if pane := m.panes.PaneAt(msg.X, msg.Y); pane != nil {
		if !press {
			if pane.Content != nil {
				pane.Content.HandleMouse(msg.X-pane.X-1, msg.Y-pane.Y-1, msg)
			}
			return m, nil
		}
		m.panes.Focus(pane.ID)
		switch zone := pane.HitZone(msg.X, msg.Y); zone {
		case ZoneTitleBar, ZoneBorder, ZoneResize:
			pane.startDrag(zone, msg.X, msg.Y)
		case ZoneContent:
			if pane.Content != nil && pane.Content.HandleMouse(msg.X-pane.X-1, msg.Y-pane.Y-1, msg) {
				return m.afterPane(pane)
			}
		}
		return m, nil
	}

	if !press {
		return m, nil
	}
	m.panes.Blur()
	if k, ok := m.hitTest(msg.X, msg.Y); ok {
		return m.activate(k)
	}
	return m, nil
}

func (m Model) handleServer(ev serverMsg) (tea.Model, tea.Cmd) {
	if ev.err != nil {
		if errors.Is(ev.err, ptz.ErrMalformed) {
			m.log.Warn("dropped frame", zap.Error(ev.err))
			return m, waitFor(m.events)
		}
		m.log.Error("connection closed", zap.Error(ev.err))
		m.conn = ptz.StateDisconnected
		m.lastErr = "connection lost"
		return m, nil
	}

	if err := m.ctrl.HandleMessage(ev.msg); err != nil {
		m.lastErr = fmt.Sprintf("%s rejected: %v", ev.msg.Event, err)
	}
	m.clampCursor()

	// A resync can end the edit session under the dialog
	if _, editing := m.ctrl.Editing(); !editing && m.panes.Get("label") != nil {
		m.panes.Remove("label")
	}
	return m, waitFor(m.events)
}

// activate runs the current mode's action on k and starts its feedback.
func (m Model) activate(k grid.Key) (tea.Model, tea.Cmd) {
	m.setCursor(k)
	fb, err := m.ctrl.Activate(k)
	m.report(err)
	switch fb {
	case panel.FeedbackEdit:
		m.openLabelDialog()
	case panel.FeedbackReject, panel.FeedbackSuccess:
		return m, m.startFlash(k, fb)
	}
	return m, nil
}

func (m *Model) startFlash(k grid.Key, fb panel.Feedback) tea.Cmd {
	m.flashSeq++
	seq := m.flashSeq
	m.flash = flash{key: k, fb: fb, seq: seq}
	return tea.Tick(fb.Duration(), func(time.Time) tea.Msg {
		return flashDoneMsg{seq: seq}
	})
}

// afterPane acts on whatever the pane produced from the last input.
func (m Model) afterPane(p *Pane) (tea.Model, tea.Cmd) {
	switch c := p.Content.(type) {
	case *CommandPalette:
		if c.SelectedAction == "" {
			return m, nil
		}
		action := c.SelectedAction
		m.panes.Remove(p.ID)
		return m.runCommand(action)

	case *LabelDialog:
		switch c.Result() {
		case labelSave:
			err := m.ctrl.Confirm(c.Draft())
			m.report(err)
			if errors.Is(err, panel.ErrInvalidStyle) {
				c.Reset()
				return m, nil
			}
			m.panes.Remove(p.ID)
		case labelSaveAndSet:
			k := c.Target()
			fb, err := m.ctrl.ConfirmAndSet(c.Draft())
			m.report(err)
			if errors.Is(err, panel.ErrInvalidStyle) {
				c.Reset()
				return m, nil
			}
			m.panes.Remove(p.ID)
			if fb == panel.FeedbackSuccess {
				return m, m.startFlash(k, fb)
			}
		case labelCancel:
			m.ctrl.Cancel()
			m.panes.Remove(p.ID)
		}

	case *ConfirmDialog:
		switch c.Answer() {
		case answerYes:
			m.panes.Remove(p.ID)
			m.report(c.action())
		case answerNo:
			m.panes.Remove(p.ID)
		}
	}
	return m, nil
}

// closePane removes a pane, cancelling the label edit if it was the dialog.
func (m *Model) closePane(id string) {
	if id == "label" {
		m.ctrl.Cancel()
	}
	m.panes.Remove(id)
}

func (m *Model) runCommand(name string) (tea.Model, tea.Cmd) {
	switch name {
	case cmdRecallMode:
		m.selectMode(panel.ModeRecall)
	case cmdSetMode:
		m.selectMode(panel.ModeSet)
	case cmdLabelMode:
		m.selectMode(panel.ModeLabel)
	case cmdPowerOn:
		m.report(m.ctrl.Power("on"))
	case cmdPowerOff:
		m.report(m.ctrl.Power("off"))
	case cmdFocusLock:
		m.report(m.ctrl.FocusLock("on"))
	case cmdFocusUnlock:
		m.report(m.ctrl.FocusLock("off"))
	case cmdProtectionOn:
		m.report(m.ctrl.SetProtection("on"))
	case cmdProtectionOff:
		m.report(m.ctrl.SetProtection("off"))
	case cmdClearAll:
		m.openConfirm("Reset every label and style? (y/n)", m.ctrl.ClearAll)
	case cmdDebug:
		m.toggleDebugPane()
	case cmdKeys:
		m.toggleKeysPane()
	case cmdQuit:
		return *m, tea.Quit
	}
	return *m, nil
}

func (m *Model) selectMode(mode panel.Mode) {
	m.report(m.ctrl.SelectMode(mode))
}

func (m *Model) report(err error) {
	if err != nil {
		m.lastErr = err.Error()
		return
	}
	m.lastErr = ""
}

func (m *Model) openCommandPalette() {
	if m.panes.Get("commands") != nil {
		m.panes.Focus("commands")
		return
	}
	m.panes.AddCentered("commands", NewCommandPalette(DefaultCommands()), 50, 16)
}

func (m *Model) openLabelDialog() {
	e, ok := m.ctrl.Editing()
	if !ok {
		return
	}
	m.panes.AddCentered("label", NewLabelDialog(e, m.keys), 44, 7+len(grid.Styles))
}

func (m *Model) openConfirm(prompt string, action func() error) {
	m.panes.AddCentered("confirm", NewConfirmDialog(prompt, action), max(len(prompt)+4, paneMinW), 5)
}

func (m *Model) toggleDebugPane() {
	if m.panes.Get("debug") != nil {
		m.panes.Remove("debug")
		return
	}
	w := min(70, m.width)
	h := max(m.height-statusLines-4, paneMinH)
	m.panes.Add(NewPane("debug", NewDebugPane(m.logs), max(m.width-w-1, 0), 1, w, h))
}

func (m *Model) toggleKeysPane() {
	if m.panes.Get("keys") != nil {
		m.panes.Remove("keys")
		return
	}
	w := min(60, m.width)
	m.panes.AddCentered("keys", NewKeysPane(m.keys, w-2), w, max(m.height-4, paneMinH))
}

// selected returns the key under the grid cursor.
func (m Model) selected() (grid.Key, bool) {
	groups := m.ctrl.Groups()
	if m.col < 0 || m.col >= len(groups) {
		return grid.Key{}, false
	}
	g := groups[m.col]
	if m.row < 0 || m.row >= len(g.Buttons) {
		return grid.Key{}, false
	}
	return g.Buttons[m.row].Key(), true
}

func (m *Model) setCursor(k grid.Key) {
	for ci, g := range m.ctrl.Groups() {
		for ri, b := range g.Buttons {
			if b.Key() == k {
				m.col, m.row = ci, ri
				return
			}
		}
	}
}

func (m *Model) moveCursor(dc, dr int) {
	m.col += dc
	m.row += dr
	m.clampCursor()
}

func (m *Model) clampCursor() {
	groups := m.ctrl.Groups()
	if len(groups) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = clamp(m.col, 0, len(groups)-1)
	m.row = clamp(m.row, 0, max(len(groups[m.col].Buttons)-1, 0))
}

// gridOffset returns the first visible group and button row so that the
// cursor stays on screen.
func (m Model) gridOffset(w, h int) (col0, row0 int) {
	visCols := max(w/colWidth, 1)
	visRows := max(h-headerLines, 1)
	if m.col >= visCols {
		col0 = m.col - visCols + 1
	}
	if m.row >= visRows {
		row0 = m.row - visRows + 1
	}
	return col0, row0
}

func (m Model) gridHeight() int {
	return max(m.height-statusLines-1, headerLines+1) // 1 for help
}

// hitTest maps screen coordinates to the button drawn there.
func (m Model) hitTest(x, y int) (grid.Key, bool) {
	h := m.gridHeight()
	if y < headerLines || y >= h {
		return grid.Key{}, false
	}
	// the right margin past the last drawn column belongs to no camera
	if x < 0 || x/colWidth >= max(m.width/colWidth, 1) {
		return grid.Key{}, false
	}
	col0, row0 := m.gridOffset(m.width, h)
	groups := m.ctrl.Groups()
	ci := col0 + x/colWidth
	ri := row0 + y - headerLines
	if ci >= len(groups) || ri >= len(groups[ci].Buttons) {
		return grid.Key{}, false
	}
	return groups[ci].Buttons[ri].Key(), true
}

func (m Model) View() string {
	w, h := m.width, m.height
	if w < 20 {
		w = 80
	}
	if h < 5 {
		h = 24
	}

	base := m.renderGrid(w, m.gridHeight()) + "\n" + m.renderStatus(w)
	if m.panes.HasPanes() {
		base = m.panes.Render(base)
	}

	m.help.Width = w
	out := base + "\n" + m.help.View(m.keys)

	var sb strings.Builder
	cw := &colorprofile.Writer{Forward: &sb, Profile: m.profile}
	if _, err := cw.WriteString(out); err != nil {
		return out
	}
	return sb.String()
}

func (m Model) renderGrid(w, h int) string {
	groups := m.ctrl.Groups()
	if len(groups) == 0 {
		lines := make([]string, h)
		lines[0] = dimStyle.Render("waiting for server…")
		return strings.Join(lines, "\n")
	}

	col0, row0 := m.gridOffset(w, h)
	visCols := max(w/colWidth, 1)
	var cols []string
	for ci := col0; ci < len(groups) && ci < col0+visCols; ci++ {
		cols = append(cols, m.renderGroup(ci, groups[ci], row0, h))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderGroup(ci int, g grid.Group, row0, h int) string {
	inner := colWidth - 2
	lines := make([]string, 0, h)

	title := center(fmt.Sprintf("PTZ %d", g.Camera.Index+1), inner)
	lines = append(lines, " "+tallyStyles[g.Camera.Tally].Render(title)+" ")
	lines = append(lines, " "+dimStyle.Render(center(truncate(g.Camera.Address, inner), inner))+" ")
	lines = append(lines, " "+strings.Repeat("─", inner)+" ")

	for ri := row0; ri < len(g.Buttons) && len(lines) < h; ri++ {
		b := g.Buttons[ri]
		label := b.Name
		style := buttonStyle(b.Style)
		if label == "" {
			label = fmt.Sprintf("#%d", b.Position+1)
			style = dimStyle
		}
		cell := padRight(truncate(label, inner), inner)

		switch {
		case m.flash.fb != panel.FeedbackNone && m.flash.key == b.Key():
			if m.flash.fb == panel.FeedbackReject {
				style = rejectStyle
			} else {
				style = successStyle
			}
		case ci == m.col && ri == m.row:
			style = style.Reverse(true)
		}
		lines = append(lines, " "+style.Render(cell)+" ")
	}
	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", colWidth))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus(w int) string {
	mode := lipgloss.NewStyle().Bold(true).Background(AccentColor).Foreground(lipgloss.Color("231")).
		Render(" " + strings.ToUpper(m.ctrl.Mode().String()) + " ")

	prot := "protection off"
	if m.ctrl.Protected() {
		prot = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("protection on")
	}

	conn := m.conn.String()
	if m.conn != ptz.StateConnected {
		conn = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Render(conn)
	}

	parts := []string{mode, prot, conn}
	if m.lastErr != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Render(m.lastErr))
	}
	return lipgloss.NewStyle().MaxWidth(w).Render(strings.Join(parts, " │ "))
}

func center(s string, w int) string {
	n := lipgloss.Width(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-n-left)
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
