package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/chat"
)

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	title       lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	errorBanner lipgloss.Style
	inputPanel  lipgloss.Style
	helpText    lipgloss.Style
	source      lipgloss.Style
	modal       lipgloss.Style
	pick        lipgloss.Style
	sender      map[chat.Sender]lipgloss.Style
}

func newTheme() uiTheme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	bg := lipgloss.Color("#120924")
	panelBg := lipgloss.Color("#1b0f35")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Background(pink).
			Foreground(lipgloss.Color("#22062f")).
			Bold(true).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		errorBanner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Align(lipgloss.Center),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
		helpText: lipgloss.NewStyle().Foreground(muted),
		source:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		modal: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(blue).
			Padding(1, 2),
		pick: lipgloss.NewStyle().Foreground(pink).Bold(true),
		sender: map[chat.Sender]lipgloss.Style{
			chat.SenderUser: lipgloss.NewStyle().Foreground(mint).Bold(true),
			chat.SenderBot:  lipgloss.NewStyle().Foreground(pink).Bold(true),
		},
	}
}

func (m model) View() string {
	var out string
	if m.quitConfirm {
		out = m.renderQuitModal()
	} else {
		sections := []string{m.renderHeader(), m.renderContent()}
		if banner := m.renderErrorBanner(); banner != "" {
			sections = append(sections, banner)
		}
		sections = append(sections, m.renderInput(), m.renderFooter())
		out = lipgloss.JoinVertical(lipgloss.Left, sections...)
	}
	return m.theme.root.Render(out)
}

func (m *model) renderHeader() string {
	title := m.theme.title.Render("RAG Chat")
	meta := m.theme.helpText.Render(fmt.Sprintf(" %s · session %s", m.cfg.APIURL, shortID(m.ctrl.SessionID())))
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(title + meta)
}

func (m *model) contentHeight() int {
	reserved := 11
	if strings.TrimSpace(m.ctrl.LastError()) != "" {
		reserved += 2
	}
	return maxInt(6, m.height-reserved)
}

func (m *model) renderContent() string {
	contentWidth := maxInt(40, m.width-4)
	panel := m.theme.panel.Width(contentWidth).Height(m.contentHeight())
	if m.showHelp {
		return panel.Render(m.theme.panelTitle.Render("Help") + "\n" + m.renderHelp())
	}
	return panel.Render(m.theme.panelTitle.Render("Conversation") + "\n" + m.timeline.View())
}

func (m *model) renderErrorBanner() string {
	lastErr := strings.TrimSpace(m.ctrl.LastError())
	if lastErr == "" {
		return ""
	}
	return m.theme.errorBanner.Width(maxInt(40, m.width-4)).Render(compactSingleLine(lastErr, 400))
}

func (m *model) renderInput() string {
	contentWidth := maxInt(40, m.width-4)
	inputView := m.input.View()
	if m.ctrl.InFlight() {
		inputView = m.spinner.View() + " " + inputView
	}
	return m.theme.inputPanel.Width(contentWidth).Render(inputView)
}

func (m *model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	statusStyle := m.theme.status
	lower := strings.ToLower(m.statusLine)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "unreachable") {
		statusStyle = m.theme.errorStatus
	}
	line := statusStyle.Render(compactSingleLine(m.statusLine, 180))
	hints := m.theme.helpText.Render("Keys: Enter send · PgUp/PgDn scroll · Home/End jump · /help · Esc quit prompt · Ctrl+C quit")
	return m.theme.footer.Width(contentWidth).Render(line + "\n" + hints)
}

func (m *model) renderQuitModal() string {
	canvasWidth := maxInt(40, m.width-4)
	canvasHeight := maxInt(12, m.height-4)
	modalWidth := clampInt(canvasWidth/2, 32, 64)

	body := strings.Join([]string{
		m.theme.errorStatus.Render("Leave the chat?"),
		m.theme.helpText.Render("The conversation is not saved."),
		"",
		m.theme.pick.Render("[Y / Enter] Quit") + "    " + m.theme.helpText.Render("[N / Esc] Return"),
	}, "\n")
	panel := m.theme.modal.Width(modalWidth).Render(body)
	return lipgloss.Place(
		canvasWidth,
		canvasHeight,
		lipgloss.Center,
		lipgloss.Center,
		panel,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("#120924")),
	)
}

// renderPanes refreshes the timeline. A change in log length scrolls the
// newest message into view; otherwise the reader's position is kept.
func (m *model) renderPanes() {
	prevYOffset := m.timeline.YOffset
	prevAtBottom := m.timeline.AtBottom()

	contentWidth := maxInt(40, m.width-4)
	m.timeline.Width = maxInt(20, contentWidth-4)
	m.timeline.Height = maxInt(3, m.contentHeight()-3)

	m.timeline.SetContent(m.renderTimeline())
	if n := m.ctrl.Len(); n != m.lastLen || prevAtBottom {
		m.lastLen = n
		m.timeline.GotoBottom()
		return
	}
	m.timeline.SetYOffset(prevYOffset)
}

func (m *model) renderTimeline() string {
	width := maxInt(20, m.timeline.Width-2)
	var b strings.Builder
	for idx, msg := range m.ctrl.Messages() {
		style, ok := m.theme.sender[msg.Sender]
		if !ok {
			style = m.theme.helpText
		}
		label := "bot"
		if msg.FromUser() {
			label = "you"
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		if msg.FromUser() {
			b.WriteString(wrapText(msg.Text, width))
		} else {
			b.WriteString(m.markdown(idx, msg.Text, width))
		}
		if !msg.Source.Empty() {
			b.WriteString("\n")
			b.WriteString(m.theme.source.Render("source: " + msg.Source.String()))
		}
		b.WriteString("\n\n")
	}
	if m.ctrl.InFlight() {
		b.WriteString(m.theme.sender[chat.SenderBot].Render("bot"))
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " ...")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) renderHelp() string {
	lines := []string{
		"Keys",
		"- Enter: send the message (ignored while a reply is pending)",
		"- PgUp/PgDn or Ctrl+B/Ctrl+F: scroll the conversation",
		"- Home/End: jump to the first or newest message",
		"- Esc: close help, or open the quit prompt",
		"- Ctrl+C: quit immediately",
		"",
		"Commands",
		"- /help: toggle this panel",
		"- /quit: open the quit prompt",
		"",
		"Notes",
		"- Every message in this window shares one server-side session.",
		"- A failed exchange is not retried; send the message again.",
		"- Nothing is saved when the program exits.",
	}
	return m.theme.helpText.Render(strings.Join(lines, "\n"))
}
