package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// PromptText is the input prompt. liner cannot measure ANSI sequences, so
// it stays unstyled.
const PromptText = "rafey-shell> "

// ErrInterrupted is returned by a LineReader when the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of user input at a time.
type LineReader interface {
	// ReadLine returns io.EOF at end of input and ErrInterrupted on Ctrl-C.
	ReadLine(prompt string) (string, error)
	AddHistory(line string)
	Close() error
}

// NewLineReader uses liner when in is a terminal and a buffered reader
// otherwise (pipes, tests).
func NewLineReader(in *os.File, out io.Writer) LineReader {
	if term.IsTerminal(int(in.Fd())) {
		l := liner.NewLiner()
		l.SetCtrlCAborts(true)
		return &linerReader{state: l}
	}
	return NewBufferedReader(in, out)
}

type linerReader struct {
	state *liner.State
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupted
	}
	return line, err
}

func (r *linerReader) AddHistory(line string) { r.state.AppendHistory(line) }

func (r *linerReader) Close() error { return r.state.Close() }

// BufferedReader reads lines from any reader, echoing the prompt to out.
type BufferedReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewBufferedReader wraps in.
func NewBufferedReader(in io.Reader, out io.Writer) *BufferedReader {
	return &BufferedReader{in: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and reads up to the next newline. A final line
// without a newline is returned before io.EOF.
func (r *BufferedReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, prompt)
	}
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AddHistory is a no-op.
func (r *BufferedReader) AddHistory(string) {}

// Close is a no-op.
func (r *BufferedReader) Close() error { return nil }

type lineResult struct {
	line string
	err  error
}

// Run drives the session until exit, end of input, Ctrl-C or ctx
// cancellation. Earlier queries from the store are offered as input history.
func Run(ctx context.Context, s *Session, r LineReader) error {
	for _, e := range s.store.Entries() {
		r.AddHistory(e.Query)
	}
	s.PrintBanner()
	defer s.Close()

	for {
		line, err := readLine(ctx, r)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) || ctx.Err() != nil {
				s.log.Debug("Input ended: %v", err)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			r.AddHistory(line)
		}
		if !s.HandleLine(ctx, line) {
			return nil
		}
	}
}

// readLine reads in a goroutine so an interrupt can end the wait.
func readLine(ctx context.Context, r LineReader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := r.ReadLine(PromptText)
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case res := <-ch:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
