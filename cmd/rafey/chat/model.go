// Package chat provides the optional full-screen TUI for rafey-shell. It
// drives the same shell.Session as the line terminal.
package chat

import (
	"context"
	"strings"

	"rafeyshell/cmd/rafey/ui"
	"rafeyshell/internal/logging"
	"rafeyshell/internal/prompt"
	"rafeyshell/internal/shell"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one rendered entry in the transcript.
type Message struct {
	Role    string
	Content string
}

type responseMsg struct {
	query string
	text  string
}

type errorMsg struct {
	err error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	ctx     context.Context
	session *shell.Session
	styles  ui.Styles

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	messages  []Message
	isLoading bool
	ready     bool
	quitting  bool
	width     int
	height    int
}

const (
	headerHeight = 2
	footerHeight = 1
	inputHeight  = 3
)

// New creates the chat model. Queries run with ctx as their parent.
func New(ctx context.Context, session *shell.Session, styles ui.Styles) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything, or /help"
	ta.Prompt = "┃ "
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.CharLimit = 0
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Spinner

	return Model{
		ctx:      ctx,
		session:  session,
		styles:   styles,
		textarea: ta,
		spinner:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Messages returns the transcript.
func (m Model) Messages() []Message { return m.messages }

// IsLoading reports whether a query is in flight.
func (m Model) IsLoading() bool { return m.isLoading }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.submit(input)
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := max(msg.Height-headerHeight-footerHeight-inputHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width)

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(msg.Width-4, 20)),
		)
		if err != nil {
			logging.Get(logging.CategoryUI).Warn("Markdown renderer unavailable: %v", err)
		} else {
			m.renderer = renderer
		}
		m.refresh()

	case responseMsg:
		m.isLoading = false
		m.session.Record(msg.query, msg.text)
		m.messages = append(m.messages, Message{Role: RoleAssistant, Content: msg.text})
		m.refresh()
		return m, nil

	case errorMsg:
		m.isLoading = false
		if m.ctx.Err() != nil {
			m.quitting = true
			return m, tea.Quit
		}
		m.messages = append(m.messages, Message{Role: RoleSystem, Content: "❌ Error: " + m.session.ErrorMessage(msg.err)})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.isLoading {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// submit runs a slash command in place or starts a query.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(input, "/") {
		return m.runCommand(input)
	}

	m.messages = append(m.messages, Message{Role: RoleUser, Content: input})
	m.isLoading = true
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.query(input))
}

func (m Model) query(input string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		text, err := session.Query(ctx, input)
		if err != nil {
			return errorMsg{err: err}
		}
		return responseMsg{query: input, text: text}
	}
}

func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name, _ := shell.ParseCommand(input)
	logging.UIDebug("Command: /%s", name)

	switch name {
	case "exit", "quit":
		m.quitting = true
		return m, tea.Quit
	case "clear":
		m.messages = nil
	case "help":
		m.system(shell.HelpText())
	case "history":
		m.system("📖 Recent History:\n" + strings.Join(m.session.HistoryLines(), "\n"))
	case "profile":
		m.system("👤 Profile:\n" + prompt.ProfileSummary(m.session.Profile()))
	default:
		m.system("Unknown command: " + name + "\n\n" + shell.HelpText())
	}
	m.refresh()
	return m, nil
}

func (m *Model) system(text string) {
	m.messages = append(m.messages, Message{Role: RoleSystem, Content: strings.TrimRight(text, "\n")})
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
