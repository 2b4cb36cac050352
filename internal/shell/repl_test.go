package shell

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"rafeyshell/internal/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptReader struct {
	lines   []string
	err     error
	history []string
	prompts []string
}

func (r *scriptReader) ReadLine(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptReader) AddHistory(line string) { r.history = append(r.history, line) }
func (r *scriptReader) Close() error           { return nil }

func TestRun_ExitCommand(t *testing.T) {
	client := &fakeClient{reply: func(int) (string, error) { return "hi there", nil }}
	s, out := newTestSession(t, client)
	r := &scriptReader{lines: []string{"", "hello", "/exit", "never read"}}

	require.NoError(t, Run(context.Background(), s, r))

	assert.Len(t, client.payloads, 1)
	assert.Equal(t, []string{"hello", "/exit"}, r.history)
	assert.Equal(t, []string{"never read"}, r.lines)
	assert.Equal(t, PromptText, r.prompts[0])
	assert.True(t, strings.HasPrefix(out.String(), "🚀 Rafey Shell v"+Version))
	assert.True(t, strings.HasSuffix(out.String(), "👋 Goodbye!\n"))
	assert.Equal(t, StateClosed, s.State())
}

func TestRun_EndOfInputCloses(t *testing.T) {
	s, out := newTestSession(t, &fakeClient{})
	require.NoError(t, Run(context.Background(), s, &scriptReader{}))
	assert.Contains(t, out.String(), "👋 Goodbye!")
}

func TestRun_InterruptCloses(t *testing.T) {
	s, out := newTestSession(t, &fakeClient{})
	r := &scriptReader{lines: []string{"/help"}, err: ErrInterrupted}
	require.NoError(t, Run(context.Background(), s, r))
	assert.Contains(t, out.String(), "👋 Goodbye!")
}

func TestRun_ReadFailure(t *testing.T) {
	s, out := newTestSession(t, &fakeClient{})
	err := Run(context.Background(), s, &scriptReader{err: errors.New("tty gone")})
	assert.ErrorContains(t, err, "tty gone")
	assert.Contains(t, out.String(), "👋 Goodbye!")
}

func TestRun_CancelDuringQuery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeClient{block: true, onQuery: cancel}
	s, out := newTestSession(t, client)
	r := &scriptReader{lines: []string{"hello", "/history"}}

	require.NoError(t, Run(ctx, s, r))
	assert.Len(t, client.payloads, 1)
	assert.Equal(t, 0, s.Store().Len())
	assert.Contains(t, out.String(), "👋 Goodbye!")
	assert.NotContains(t, out.String(), "Recent History")
}

func TestRun_SeedsInputHistory(t *testing.T) {
	store := history.NewStore(
		history.Entry{Query: "old one", Response: "a"},
		history.Entry{Query: "old two", Response: "b"},
	)
	s, _ := newTestSession(t, &fakeClient{}, func(o *Options) { o.Store = store })
	r := &scriptReader{}

	require.NoError(t, Run(context.Background(), s, r))
	assert.Equal(t, []string{"old one", "old two"}, r.history)
}

func TestBufferedReader(t *testing.T) {
	var out strings.Builder
	r := NewBufferedReader(strings.NewReader("first\r\nsecond\nlast"), &out)

	for _, want := range []string{"first", "second", "last"} {
		line, err := r.ReadLine("> ")
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
	_, err := r.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > > ", out.String())
}
