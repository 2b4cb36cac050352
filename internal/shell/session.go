// Package shell implements the interactive session: line classification,
// slash commands, model queries and history bookkeeping.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"rafeyshell/internal/config"
	"rafeyshell/internal/history"
	"rafeyshell/internal/llm"
	"rafeyshell/internal/logging"
	"rafeyshell/internal/prompt"

	"github.com/google/uuid"
)

// Version is printed in the banner.
const Version = "1.0.0"

const defaultTimeout = 2 * time.Minute

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateRunningCommand
	StateQueryInFlight
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateRunningCommand:
		return "running_command"
	case StateQueryInFlight:
		return "query_in_flight"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Scheduler receives history snapshots after each successful query.
// *history.Persister implements it.
type Scheduler interface {
	Schedule(entries []history.Entry)
}

// Options configures a Session. Client is required.
type Options struct {
	Client      llm.Client
	Store       *history.Store
	Persister   Scheduler
	Profile     config.UserProfile
	ProfileDoc  *config.ProfileDocument
	Out         io.Writer
	Styles      *Styles // nil means unstyled
	RevealDelay time.Duration
	Timeout     time.Duration
	// Indicator shows the spinner while a query is in flight.
	Indicator bool
	// Environment overrides the working directory and clock, for tests.
	Environment func() prompt.Environment
}

// Session is one interactive conversation. It is driven by a single
// goroutine and is not safe for concurrent use.
type Session struct {
	ID string

	client       llm.Client
	store        *history.Store
	persister    Scheduler
	profile      config.UserProfile
	systemPrompt string
	out          io.Writer
	styles       Styles
	revealDelay  time.Duration
	timeout      time.Duration
	indicator    bool
	env          func() prompt.Environment
	log          *logging.Logger

	state State
}

// NewSession creates a session in the Idle state.
func NewSession(opts Options) (*Session, error) {
	if opts.Client == nil {
		return nil, errors.New("shell: client is required")
	}

	s := &Session{
		ID:           uuid.NewString(),
		client:       opts.Client,
		store:        opts.Store,
		persister:    opts.Persister,
		profile:      opts.Profile,
		systemPrompt: prompt.BuildSystemPrompt(opts.Profile, opts.ProfileDoc),
		out:          opts.Out,
		styles:       PlainStyles(),
		revealDelay:  opts.RevealDelay,
		timeout:      opts.Timeout,
		indicator:    opts.Indicator,
		env:          opts.Environment,
	}
	if opts.Styles != nil {
		s.styles = *opts.Styles
	}
	if s.store == nil {
		s.store = history.NewStore()
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.timeout <= 0 {
		s.timeout = defaultTimeout
	}
	if s.env == nil {
		s.env = prompt.CurrentEnvironment
	}
	s.log = logging.Get(logging.CategorySession).With("session", s.ID)

	s.log.Info("Session started: backend=%s entries=%d", s.client.Name(), s.store.Len())
	return s, nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Store returns the live conversation store.
func (s *Session) Store() *history.Store { return s.store }

// Profile returns the session profile.
func (s *Session) Profile() config.UserProfile { return s.profile }

// HandleLine classifies and executes one input line. It returns false once
// the session has been asked to close.
func (s *Session) HandleLine(ctx context.Context, line string) bool {
	if s.state == StateClosed {
		return false
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	s.state = StateDispatching
	if strings.HasPrefix(input, "/") {
		s.state = StateRunningCommand
		keep := s.runCommand(input)
		if keep {
			s.state = StateIdle
		}
		return keep
	}

	s.state = StateQueryInFlight
	keep := s.ask(ctx, input)
	if keep {
		s.state = StateIdle
	}
	return keep
}

// Close prints the farewell and moves to Closed. It is idempotent.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.styles.Warning.Render("👋 Goodbye!"))
	s.log.Info("Session closed: entries=%d", s.store.Len())
}

// Query builds the prompt for query from recent history and sends it with
// the per-query timeout. It does not touch the store.
func (s *Session) Query(ctx context.Context, query string) (string, error) {
	timer := logging.StartTimer(logging.CategorySession, "Session.Query")
	defer timer.Stop()

	recent := slices.Collect(s.store.Recent(prompt.ContextEntries))
	payload := llm.Payload{
		System:  s.systemPrompt,
		Prompt:  prompt.BuildContextualPrompt(query, recent, s.env()),
		History: llm.HistoryMessages(recent),
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Query(qctx, payload)
}

// Record appends a completed exchange and schedules persistence.
func (s *Session) Record(query, response string) {
	s.store.Append(history.Entry{Timestamp: s.env().Now, Query: query, Response: response})
	if s.persister != nil {
		s.persister.Schedule(s.store.Entries())
	}
	s.log.Debug("Recorded exchange: query_len=%d response_len=%d entries=%d", len(query), len(response), s.store.Len())
}

// ask runs one query on the line terminal. It returns false when the parent
// context ended during the query, which closes the session.
func (s *Session) ask(ctx context.Context, query string) bool {
	fmt.Fprintln(s.out)
	var ind *Indicator
	if s.indicator {
		ind = StartIndicator(s.out, "Thinking...")
	}
	text, err := s.Query(ctx, query)
	ind.Stop()

	if err != nil {
		if ctx.Err() != nil {
			s.log.Info("Query cancelled by interrupt")
			return false
		}
		s.log.Warn("Query failed: kind=%s err=%v", llm.KindOf(err), err)
		s.printError(s.ErrorMessage(err))
		return true
	}

	fmt.Fprintln(s.out, s.styles.Success.Render("💡 Response:"))
	Reveal(ctx, s.out, text, s.revealDelay)
	fmt.Fprint(s.out, "\n\n")

	s.Record(query, text)
	return true
}

// ErrorMessage renders a query failure for the terminal.
func (s *Session) ErrorMessage(err error) string {
	return UserMessage(err, s.timeout)
}

func (s *Session) printError(msg string) {
	fmt.Fprintln(s.out, s.styles.Error.Render("❌ Error: ")+msg)
	fmt.Fprintln(s.out)
}

// UserMessage renders a query failure for the terminal.
func UserMessage(err error, timeout time.Duration) string {
	var llmErr *llm.Error
	switch {
	case errors.As(err, &llmErr):
		return llmErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Request timed out after %v. Please try again.", timeout)
	default:
		return "API Error: " + err.Error()
	}
}
