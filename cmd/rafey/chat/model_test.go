package chat

import (
	"context"
	"errors"
	"io"
	"testing"

	"rafeyshell/cmd/rafey/ui"
	"rafeyshell/internal/config"
	"rafeyshell/internal/llm"
	"rafeyshell/internal/shell"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls int
	reply string
	err   error
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Query(context.Context, llm.Payload) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newTestModel(t *testing.T, client llm.Client) Model {
	t.Helper()
	session, err := shell.NewSession(shell.Options{
		Client:  client,
		Profile: config.DefaultProfile(),
		Out:     io.Discard,
	})
	require.NoError(t, err)

	m := New(context.Background(), session, ui.NewStyles(ui.DarkTheme()))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func submit(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(input)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestModel_ViewBeforeAndAfterResize(t *testing.T) {
	client := &fakeClient{}
	session, err := shell.NewSession(shell.Options{Client: client, Out: io.Discard})
	require.NoError(t, err)

	m := New(context.Background(), session, ui.DefaultStyles())
	assert.Equal(t, "Initializing...", m.View())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, updated.(Model).View(), "Rafey Shell v"+shell.Version)
}

func TestModel_QueryRoundTrip(t *testing.T) {
	client := &fakeClient{reply: "hi there"}
	m := newTestModel(t, client)

	m, cmd := submit(t, m, "hello")
	require.NotNil(t, cmd)
	assert.True(t, m.IsLoading())
	require.Len(t, m.Messages(), 1)
	assert.Equal(t, Message{Role: RoleUser, Content: "hello"}, m.Messages()[0])

	// Enter is ignored while a query is in flight.
	m, cmd = submit(t, m, "again")
	assert.Nil(t, cmd)
	assert.Len(t, m.Messages(), 1)

	msg := m.query("hello")()
	require.IsType(t, responseMsg{}, msg)
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.IsLoading())
	assert.Equal(t, 1, client.calls)
	require.Len(t, m.Messages(), 2)
	assert.Equal(t, RoleAssistant, m.Messages()[1].Role)
	assert.Equal(t, "hi there", m.Messages()[1].Content)

	last, ok := m.session.Store().Last()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Query)
	assert.Equal(t, "hi there", last.Response)
}

func TestModel_QueryError(t *testing.T) {
	client := &fakeClient{err: &llm.Error{Kind: llm.KindNetworkUnreachable}}
	m := newTestModel(t, client)

	m, _ = submit(t, m, "hello")
	updated, cmd := m.Update(m.query("hello")())
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, m.IsLoading())
	require.Len(t, m.Messages(), 2)
	assert.Equal(t, RoleSystem, m.Messages()[1].Role)
	assert.Equal(t, "❌ Error: Unable to connect to AI service. Please check your internet connection.", m.Messages()[1].Content)
	assert.Equal(t, 0, m.session.Store().Len())
}

func TestModel_BlankInputIgnored(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(t, client)

	m, cmd := submit(t, m, "   ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.Messages())
	assert.False(t, m.IsLoading())
}

func TestModel_Commands(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(t, client)

	m, _ = submit(t, m, "/history")
	require.Len(t, m.Messages(), 1)
	assert.Contains(t, m.Messages()[0].Content, "No conversation history yet.")

	m, _ = submit(t, m, "/profile")
	assert.Contains(t, m.Messages()[1].Content, "- Name: Rafey")

	m, _ = submit(t, m, "/bogus")
	assert.Contains(t, m.Messages()[2].Content, "Unknown command: bogus")
	assert.Contains(t, m.Messages()[2].Content, "Available Commands:")

	m, _ = submit(t, m, "/clear")
	assert.Empty(t, m.Messages())
	assert.Equal(t, 0, client.calls)

	_, cmd := submit(t, m, "/exit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_CancelledQueryQuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session, err := shell.NewSession(shell.Options{Client: &fakeClient{}, Out: io.Discard})
	require.NoError(t, err)
	m := New(ctx, session, ui.DefaultStyles())

	cancel()
	_, cmd := m.Update(errorMsg{err: errors.New("context canceled")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestSafeRenderMarkdown_NoRenderer(t *testing.T) {
	var m Model
	assert.Equal(t, "**bold**", m.safeRenderMarkdown("**bold**"))
}
