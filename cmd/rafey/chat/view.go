package chat

import (
	"context"
	"fmt"
	"strings"

	"rafeyshell/cmd/rafey/ui"
	"rafeyshell/internal/shell"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("🚀 Rafey Shell v" + shell.Version))
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.textarea.View())
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderFooter() string {
	if m.isLoading {
		return m.styles.Footer.Render(m.spinner.View() + " Thinking...")
	}
	return m.styles.Footer.Render(fmt.Sprintf("%s • %d entries • /help • esc to quit",
		m.session.Profile().Name, m.session.Store().Len()))
}

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.messages {
		switch msg.Role {
		case RoleUser:
			sb.WriteString(m.styles.Prompt.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content))
			sb.WriteString("\n\n")

		case RoleSystem:
			for _, line := range strings.Split(msg.Content, "\n") {
				sb.WriteString(m.styles.Muted.Render(line) + "\n")
			}
			sb.WriteString("\n")

		default:
			sb.WriteString(m.styles.Success.Render("💡 Response:") + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

// Run starts the full-screen chat and blocks until the user quits or ctx
// ends. The session is closed on return.
func Run(ctx context.Context, session *shell.Session, styles ui.Styles) error {
	defer session.Close()

	p := tea.NewProgram(
		New(ctx, session, styles),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
