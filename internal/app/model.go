// Package app is the root Bubble Tea model: it owns the tree panel and the
// details pane, the focus ring between them, the editor connection, and the
// status and help footer.
package app

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/nvtree/internal/fstree"
	"github.com/oakwood-commons/nvtree/internal/keymap"
	"github.com/oakwood-commons/nvtree/internal/panel"
	"github.com/oakwood-commons/nvtree/internal/rpc"
	"github.com/oakwood-commons/nvtree/pkg/logger"
)

// footerHeight is the status line plus the help line.
const footerHeight = 2

// Connector is the connection lifecycle the model drives. Start blocks until
// the connection is up or has failed.
type Connector interface {
	Start(ctx context.Context) error
	Notifications() <-chan rpc.Notification
}

// Options configures the root model. Panel.Host is set by New.
type Options struct {
	Context context.Context
	// Connector, when nil, leaves the panel awaiting a connection.
	Connector  Connector
	Panel      panel.Options
	PanelWidth int
	Theme      Theme
	Logger     logr.Logger
}

type focusTarget int

const (
	focusPanel focusTarget = iota
	focusDetails
)

// Model is the root model. It implements panel.Host.
type Model struct {
	ctx     context.Context
	conn    Connector
	panel   *panel.Panel
	details *Details
	help    help.Model
	theme   Theme
	log     logr.Logger

	focus      focusTarget
	panelWidth int
	width      int
	height     int

	status    string
	statusErr bool
	quitting  bool
}

// New builds the root model and its panel.
func New(opts Options) *Model {
	m := &Model{
		ctx:        opts.Context,
		conn:       opts.Connector,
		theme:      opts.Theme,
		log:        logger.Component(&opts.Logger, "app"),
		panelWidth: opts.PanelWidth,
		width:      80,
		height:     24,
		help:       help.New(),
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.panelWidth <= 0 {
		m.panelWidth = 36
	}
	if m.theme.NoColor {
		m.help.Styles = help.Styles{}
	}
	m.details = NewDetails(m.theme.Details, m.theme.NoColor)

	popts := opts.Panel
	popts.Host = m
	popts.Styles = m.theme.Panel
	if popts.Tree == nil {
		popts.Tree = fstree.New(fstree.Options{Styles: m.theme.Tree})
	}
	if popts.Logger.GetSink() == nil {
		popts.Logger = opts.Logger
	}
	m.panel = panel.New(popts)

	if m.conn == nil {
		m.status = "no editor address"
	} else {
		m.status = "connecting"
	}
	if m.panel.Visible() {
		m.setFocus(focusPanel)
	} else {
		m.setFocus(focusDetails)
	}
	m.layout()
	m.syncDetails()
	return m
}

// Panel returns the tree panel.
func (m *Model) Panel() *panel.Panel { return m.panel }

// Status returns the status line text.
func (m *Model) Status() string { return m.status }

// FocusNext moves focus around the ring, skipping the hidden panel.
func (m *Model) FocusNext() {
	switch m.focus {
	case focusPanel:
		m.setFocus(focusDetails)
	default:
		if m.panel.Visible() {
			m.setFocus(focusPanel)
		}
	}
}

// FocusPanel gives the panel focus if it is visible.
func (m *Model) FocusPanel() {
	if m.panel.Visible() {
		m.setFocus(focusPanel)
	}
}

func (m *Model) setFocus(t focusTarget) {
	m.focus = t
	if t == focusPanel {
		m.details.Blur()
		m.panel.Focus()
		return
	}
	m.panel.Blur()
	m.details.Focus()
}

// Init starts the watcher and the connection attempt.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.panel.Init(), m.connect())
}

func (m *Model) connect() tea.Cmd {
	if m.conn == nil {
		return nil
	}
	conn, ctx := m.conn, m.ctx
	return func() tea.Msg {
		if err := conn.Start(ctx); err != nil {
			return rpc.ConnectFailedMsg{Err: err}
		}
		return rpc.ReadyMsg{}
	}
}

func (m *Model) listen() tea.Cmd {
	if m.conn == nil {
		return nil
	}
	return rpc.Listen(m.conn.Notifications())
}

// Update routes one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.layout()
	m.syncDetails()
	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return nil

	case rpc.ReadyMsg:
		m.setStatus("connected", false)
		m.panel.Update(msg)
		return m.listen()

	case rpc.ConnectFailedMsg:
		m.log.Error(msg.Err, "connect failed")
		m.setStatus(fmt.Sprintf("not connected: %v", msg.Err), true)
		return nil

	case rpc.Notification:
		cmd := m.panel.Update(msg)
		return tea.Batch(cmd, m.listen())

	case rpc.DisconnectedMsg:
		m.log.Info("editor disconnected")
		m.setStatus("disconnected", true)
		return nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" || msg.Key().Code == 0x03 {
			m.quitting = true
			return nil
		}
		if m.focus == focusPanel {
			return m.panel.Update(msg)
		}
		return m.detailsKey(msg)

	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		if m.overPanel(mouse.X) {
			return m.panel.Update(msg)
		}
		m.setFocus(focusDetails)
		return nil

	case tea.MouseWheelMsg:
		if m.overPanel(msg.Mouse().X) {
			return nil
		}
		return m.details.Update(msg)
	}
	return m.panel.Update(msg)
}

// detailsKey handles keys while the details pane has focus. The switch chord
// returns to the panel and shows it first if hidden.
func (m *Model) detailsKey(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "?" {
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	c := keymap.FromKey(msg.Key())
	if a, ok := m.panel.Bindings().Resolve(c); ok && a == keymap.SwitchFocus {
		if !m.panel.Visible() {
			m.panel.Show()
		}
		m.setFocus(focusPanel)
		return nil
	}
	return m.details.Update(msg)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) overPanel(x int) bool {
	return m.panel.Visible() && x < m.panelCols()
}

func (m *Model) panelCols() int {
	if !m.panel.Visible() {
		return 0
	}
	return min(m.panelWidth, m.width)
}

func (m *Model) layout() {
	body := max(m.height-footerHeight, 0)
	pw := m.panelCols()
	m.panel.SetSize(pw, body)
	m.details.SetSize(max(m.width-pw, 0), body)
}

func (m *Model) syncDetails() {
	e, ok := m.panel.Selected()
	m.details.SetEntry(e, ok)
}

func (m *Model) renderStatus() string {
	text := fmt.Sprintf("%s  %s", m.panel.Dir(), m.status)
	if m.theme.NoColor {
		return text
	}
	if m.statusErr {
		return m.theme.Error.Render(text)
	}
	return m.theme.Status.Render(text)
}

// Render returns the full screen as a string.
func (m *Model) Render() string {
	if m.quitting {
		return ""
	}
	body := m.details.View()
	if m.panel.Visible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.panel.View(), body)
	}
	footer := lipgloss.NewStyle().MaxWidth(m.width)
	return lipgloss.JoinVertical(lipgloss.Left, body,
		footer.Render(m.renderStatus()), footer.Render(m.help.View(m.panel)))
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}
