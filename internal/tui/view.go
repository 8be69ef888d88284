package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/set-night/geminichat/internal/domain"
)

// header, input box with border, help line
const chromeHeight = 6

func (m Model) View() string {
	header := titleStyle.Render("Gemini Chat")
	if m.opts.ModelName != "" {
		header += modelTagStyle.Render(m.opts.ModelName)
	}

	box := inputBoxStyle
	if m.session.Busy() {
		box = inputBoxBusyStyle
	}
	inputBox := box.Width(max(10, m.width-2)).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		inputBox,
		helpStyle.Render(m.helpLine()),
	)
}

func (m Model) helpLine() string {
	switch {
	case m.session.Busy():
		return "waiting for reply... • esc quit"
	case !m.session.CanSend():
		return "type a message • pgup/pgdn scroll • esc quit"
	default:
		return "enter send • pgup/pgdn scroll • esc quit"
	}
}

func (m Model) renderTranscript() string {
	st := m.session.State()
	if len(st.Transcript) == 0 && !st.Busy {
		return dimStyle.Render("  No messages yet. Say hello!")
	}

	var sb strings.Builder
	for _, msg := range st.Transcript {
		switch msg.Sender {
		case domain.SenderUser:
			sb.WriteString(userLabelStyle.Render("You") + "\n")
			sb.WriteString(userTextStyle.Render(msg.Text) + "\n\n")
		default:
			sb.WriteString(modelLabelStyle.Render("Gemini") + "\n")
			sb.WriteString(m.renderMarkdown(msg.Text) + "\n")
		}
	}
	if st.Busy {
		sb.WriteString(m.spinner.View() + dimStyle.Render(" thinking...") + "\n")
	}
	return sb.String()
}

// renderMarkdown falls back to the raw text when glamour fails.
func (m Model) renderMarkdown(text string) (out string) {
	if m.renderer == nil {
		return userTextStyle.Render(text) + "\n"
	}
	defer func() {
		if r := recover(); r != nil {
			out = userTextStyle.Render(text) + "\n"
		}
	}()
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return userTextStyle.Render(text) + "\n"
	}
	return rendered
}
