package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"ragchat/internal/chat"
	"ragchat/internal/config"
)

const (
	inputPlaceholder   = "Type your message..."
	waitingPlaceholder = "Waiting for response..."
	healthTimeout      = 5 * time.Second
)

type healthProber interface {
	Health(ctx context.Context) (string, error)
}

type model struct {
	cfg    config.Config
	ctrl   *chat.Controller
	prober healthProber
	log    *zap.Logger

	renderer    *glamour.TermRenderer
	renderWidth int
	rendered    map[int]string

	statusLine  string
	showHelp    bool
	quitConfirm bool
	lastLen     int

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

type healthDoneMsg struct {
	status string
	err    error
}

type replyMsg struct {
	exchange chat.Exchange
	reply    chat.Reply
	err      error
}

func newModel(cfg config.Config, ctrl *chat.Controller, prober healthProber, logger *zap.Logger) model {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 0
	input.Placeholder = inputPlaceholder
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 4

	return model{
		cfg:        cfg,
		ctrl:       ctrl,
		prober:     prober,
		log:        logger,
		rendered:   map[int]string{},
		statusLine: "connecting to " + cfg.APIURL + "...",
		input:      input,
		timeline:   timeline,
		spinner:    sp,
		theme:      newTheme(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		m.healthCmd(),
	)
}

func (m model) healthCmd() tea.Cmd {
	prober := m.prober
	if prober == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		status, err := prober.Health(ctx)
		return healthDoneMsg{status: status, err: err}
	}
}

// sendCmd runs the request of an exchange off the event loop. State changes
// wait for the replyMsg.
func (m model) sendCmd(ex chat.Exchange) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		reply, err := ctrl.Do(context.Background(), ex)
		return replyMsg{exchange: ex, reply: reply, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case healthDoneMsg:
		if msg.err != nil {
			m.log.Warn("health probe failed", zap.String("kind", chat.ErrorKind(msg.err)), zap.Error(msg.err))
			m.statusLine = "service unreachable: " + compactSingleLine(msg.err.Error(), 160)
			break
		}
		m.statusLine = fmt.Sprintf("ready · service %s · session %s", msg.status, shortID(m.ctrl.SessionID()))
	case replyMsg:
		m.ctrl.Complete(msg.exchange, msg.reply, msg.err)
		if msg.err != nil {
			m.statusLine = "send failed"
		} else {
			m.statusLine = "reply received"
		}
		cmds = append(cmds, m.syncInput())
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.ctrl.InFlight() {
			m.renderPanes()
		}
	case tea.MouseMsg:
		if m.quitConfirm {
			break
		}
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.quitConfirm {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, tea.Quit
			case "n", "N", "esc":
				m.quitConfirm = false
				m.statusLine = "quit canceled"
			}
			return m, nil
		}
		switch msg.String() {
		case "esc":
			if m.showHelp {
				m.showHelp = false
				m.renderPanes()
				return m, nil
			}
			m.beginQuitConfirm()
			return m, nil
		case "enter":
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case "pgup", "ctrl+b":
			m.timeline.LineUp(8)
			return m, nil
		case "pgdown", "ctrl+f":
			m.timeline.LineDown(8)
			return m, nil
		case "home":
			m.timeline.GotoTop()
			return m, nil
		case "end":
			m.timeline.GotoBottom()
			return m, nil
		}
		if m.ctrl.InFlight() {
			// input surface is disabled until the reply lands
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.UpdateInput(m.input.Value())
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// submit handles Enter: local slash commands first, then the send transition.
func (m *model) submit() tea.Cmd {
	switch strings.ToLower(strings.TrimSpace(m.input.Value())) {
	case "/help":
		m.showHelp = !m.showHelp
		m.resetInput()
		m.renderPanes()
		return nil
	case "/quit", "/exit":
		m.resetInput()
		m.beginQuitConfirm()
		return nil
	}

	m.ctrl.UpdateInput(m.input.Value())
	ex, ok := m.ctrl.Begin()
	if !ok {
		return nil
	}
	m.showHelp = false
	m.statusLine = "waiting for reply..."
	m.syncInput()
	m.renderPanes()
	return m.sendCmd(ex)
}

func (m *model) resetInput() {
	m.input.SetValue("")
	m.ctrl.UpdateInput("")
}

// syncInput mirrors the controller into the input surface: the field shows
// the pending input and is disabled while a request is in flight.
func (m *model) syncInput() tea.Cmd {
	m.input.SetValue(m.ctrl.Input())
	if m.ctrl.InFlight() {
		m.input.Placeholder = waitingPlaceholder
		m.input.Blur()
		return nil
	}
	m.input.Placeholder = inputPlaceholder
	return m.input.Focus()
}

func (m *model) beginQuitConfirm() {
	m.quitConfirm = true
	m.statusLine = "quit?"
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.Width = maxInt(20, contentWidth-6)
}

// markdown renders bot text, caching per log index for the current width.
func (m *model) markdown(idx int, text string, width int) string {
	if width != m.renderWidth || m.renderer == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Warn("markdown renderer unavailable", zap.Error(err))
			return wrapText(text, width)
		}
		m.renderer = renderer
		m.renderWidth = width
		m.rendered = map[int]string{}
	}
	if cached, ok := m.rendered[idx]; ok {
		return cached
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		out = wrapText(text, width)
	}
	out = strings.Trim(out, "\n")
	m.rendered[idx] = out
	return out
}
