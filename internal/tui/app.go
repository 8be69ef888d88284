package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/set-night/geminichat/internal/domain"
	"github.com/set-night/geminichat/internal/service"
)

type Options struct {
	ModelName string
	// MarkdownStyle is a glamour standard style name ("dark", "light", "notty").
	MarkdownStyle string
}

// replyMsg carries the model turn appended by a finished send.
type replyMsg struct {
	message domain.Message
}

// Model renders a ChatSession and feeds it keystrokes and submits.
type Model struct {
	ctx      context.Context
	session  *service.ChatSession
	opts     Options
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
}

func NewModel(ctx context.Context, session *service.ChatSession, opts Options) Model {
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4000
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := Model{
		ctx:      ctx,
		session:  session,
		opts:     opts,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.resize(m.width, m.height)
	return m
}

// Run starts the terminal program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, session *service.ChatSession, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, session, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.SetInput(m.input.Value())
		return m, cmd

	case replyMsg:
		slog.Debug("reply rendered", "message_id", msg.message.ID, "sender", msg.message.Sender)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.session.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit is a no-op while a reply is pending or the input is blank.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.session.CanSend() {
		return m, nil
	}

	replies := m.session.SendAsync(m.ctx, m.input.Value())
	m.input.Reset()
	m.refresh()
	if replies == nil {
		return m, nil
	}
	return m, tea.Batch(waitForReply(replies), m.spinner.Tick)
}

func waitForReply(replies <-chan domain.Message) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{message: <-replies}
	}
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height

	m.input.Width = max(10, width-8)
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeHeight)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.opts.MarkdownStyle),
		glamour.WithWordWrap(max(20, width-4)),
	)
	if err == nil {
		m.renderer = r
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
