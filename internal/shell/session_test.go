package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"rafeyshell/internal/config"
	"rafeyshell/internal/history"
	"rafeyshell/internal/llm"
	"rafeyshell/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, ignoreOpencensus)
}

// genai links opencensus, whose stats worker starts at package init.
var ignoreOpencensus = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedEnv() prompt.Environment {
	return prompt.Environment{WorkingDir: "/work", Now: fixedNow}
}

type fakeClient struct {
	payloads []llm.Payload
	reply    func(n int) (string, error)
	// block waits for ctx before returning its error.
	block   bool
	onQuery func()
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Query(ctx context.Context, p llm.Payload) (string, error) {
	f.payloads = append(f.payloads, p)
	if f.onQuery != nil {
		f.onQuery()
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.reply == nil {
		return "ok", nil
	}
	return f.reply(len(f.payloads))
}

type recordingScheduler struct {
	snapshots [][]history.Entry
}

func (r *recordingScheduler) Schedule(entries []history.Entry) {
	r.snapshots = append(r.snapshots, entries)
}

func newTestSession(t *testing.T, client llm.Client, opts ...func(*Options)) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	o := Options{
		Client:      client,
		Profile:     config.DefaultProfile(),
		Out:         &out,
		Environment: fixedEnv,
	}
	for _, fn := range opts {
		fn(&o)
	}
	s, err := NewSession(o)
	require.NoError(t, err)
	return s, &out
}

func TestNewSession_RequiresClient(t *testing.T) {
	_, err := NewSession(Options{})
	assert.Error(t, err)
}

func TestSession_FirstQueryHasNoContextSection(t *testing.T) {
	client := &fakeClient{reply: func(int) (string, error) { return "hi there", nil }}
	s, out := newTestSession(t, client)

	assert.True(t, s.HandleLine(context.Background(), "hello"))

	require.Len(t, client.payloads, 1)
	p := client.payloads[0]
	assert.Equal(t,
		"CURRENT CONTEXT:\n- Working Directory: /work\n- Timestamp: 2024-01-02T03:04:05.000Z\n\nUSER QUERY: hello",
		p.Prompt)
	assert.NotContains(t, p.Prompt, "RECENT CONVERSATION CONTEXT")
	assert.Empty(t, p.History)
	assert.Contains(t, p.System, "Rafey")

	entries := s.Store().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, history.Entry{Timestamp: fixedNow, Query: "hello", Response: "hi there"}, entries[0])

	assert.Contains(t, out.String(), "💡 Response:")
	assert.Contains(t, out.String(), "hi there\n\n")
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_ContextUsesLastThree(t *testing.T) {
	client := &fakeClient{}
	store := history.NewStore()
	for i := 1; i <= 5; i++ {
		store.Append(history.Entry{Query: fmt.Sprintf("q%d", i), Response: fmt.Sprintf("a%d", i)})
	}
	s, _ := newTestSession(t, client, func(o *Options) { o.Store = store })

	s.HandleLine(context.Background(), "next")

	require.Len(t, client.payloads, 1)
	p := client.payloads[0]
	assert.True(t, strings.HasPrefix(p.Prompt, "RECENT CONVERSATION CONTEXT:\n1. User: q3\n"))
	assert.NotContains(t, p.Prompt, "q2")
	assert.Len(t, p.History, 6)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "q3"}, p.History[0])
}

func TestSession_BlankInputIsIgnored(t *testing.T) {
	client := &fakeClient{}
	s, out := newTestSession(t, client)

	for _, line := range []string{"", "   ", "\t"} {
		assert.True(t, s.HandleLine(context.Background(), line))
	}
	assert.Empty(t, client.payloads)
	assert.Equal(t, 0, s.Store().Len())
	assert.Empty(t, out.String())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_HistoryIsCapped(t *testing.T) {
	client := &fakeClient{reply: func(n int) (string, error) { return fmt.Sprintf("a%d", n), nil }}
	s, _ := newTestSession(t, client)

	for i := 1; i <= 51; i++ {
		s.HandleLine(context.Background(), fmt.Sprintf("q%d", i))
	}

	entries := s.Store().Entries()
	require.Len(t, entries, history.MaxEntries)
	assert.Equal(t, "q2", entries[0].Query)
	assert.Equal(t, "q51", entries[len(entries)-1].Query)
}

func TestSession_SchedulesPersistence(t *testing.T) {
	sched := &recordingScheduler{}
	client := &fakeClient{}
	s, _ := newTestSession(t, client, func(o *Options) { o.Persister = sched })

	s.HandleLine(context.Background(), "one")
	s.HandleLine(context.Background(), "two")

	require.Len(t, sched.snapshots, 2)
	assert.Len(t, sched.snapshots[0], 1)
	assert.Len(t, sched.snapshots[1], 2)
}

func TestSession_ErrorsAreReportedAndNotRecorded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing configuration",
			err:  &llm.Error{Kind: llm.KindConfigurationMissing},
			want: "❌ Error: No API key configured. Set GEMINI_API_KEY or run: rafey config",
		},
		{
			name: "unauthorized",
			err:  &llm.Error{Kind: llm.KindUnauthorized, Backend: "Gemini"},
			want: "❌ Error: The API key was rejected by Gemini. Check your API key.",
		},
		{
			name: "network",
			err:  &llm.Error{Kind: llm.KindNetworkUnreachable},
			want: "❌ Error: Unable to connect to AI service. Please check your internet connection.",
		},
		{
			name: "backend",
			err:  &llm.Error{Kind: llm.KindBackend, Detail: "Server error: 502"},
			want: "❌ Error: API Error: Server error: 502",
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
			want: "❌ Error: API Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &recordingScheduler{}
			client := &fakeClient{reply: func(int) (string, error) { return "", tt.err }}
			s, out := newTestSession(t, client, func(o *Options) { o.Persister = sched })

			assert.True(t, s.HandleLine(context.Background(), "hello"))
			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, 0, s.Store().Len())
			assert.Empty(t, sched.snapshots)
			assert.Equal(t, StateIdle, s.State())
		})
	}
}

func TestSession_Timeout(t *testing.T) {
	client := &fakeClient{block: true}
	s, out := newTestSession(t, client, func(o *Options) { o.Timeout = 10 * time.Millisecond })

	assert.True(t, s.HandleLine(context.Background(), "slow"))
	assert.Contains(t, out.String(), "Request timed out after 10ms. Please try again.")
	assert.Equal(t, 0, s.Store().Len())
}

func TestSession_InterruptDuringQueryCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &fakeClient{block: true, onQuery: cancel}
	s, out := newTestSession(t, client)

	assert.False(t, s.HandleLine(ctx, "hello"))
	assert.Equal(t, 0, s.Store().Len())
	assert.NotContains(t, out.String(), "❌ Error")
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	s, out := newTestSession(t, &fakeClient{})

	s.Close()
	s.Close()

	assert.Equal(t, 1, strings.Count(out.String(), "👋 Goodbye!"))
	assert.Equal(t, StateClosed, s.State())
	assert.False(t, s.HandleLine(context.Background(), "hello"))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Request timed out after 2m0s. Please try again.",
		UserMessage(fmt.Errorf("wrapped: %w", context.DeadlineExceeded), 2*time.Minute))
	assert.Equal(t, "API Error: boom", UserMessage(errors.New("boom"), time.Minute))
	assert.Equal(t, "Unable to connect to AI service. Please check your internet connection.",
		UserMessage(fmt.Errorf("query: %w", &llm.Error{Kind: llm.KindNetworkUnreachable}), time.Minute))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "query_in_flight", StateQueryInFlight.String())
	assert.Equal(t, "unknown", State(42).String())
}
