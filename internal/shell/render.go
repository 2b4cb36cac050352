package shell

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// PlainStyles renders text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Muted:   plain,
		Accent:  plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
	}
}

// Reveal writes text word by word with delay between words. Spacing is
// preserved exactly; the pacing is cosmetic. When ctx ends the remainder is
// written at once.
func Reveal(ctx context.Context, w io.Writer, text string, delay time.Duration) {
	if delay <= 0 {
		io.WriteString(w, text)
		return
	}

	words := splitWords(text)
	for i, word := range words {
		io.WriteString(w, word)
		if i == len(words)-1 {
			return
		}
		select {
		case <-ctx.Done():
			io.WriteString(w, strings.Join(words[i+1:], ""))
			return
		case <-time.After(delay):
		}
	}
}

// splitWords cuts text after each run of whitespace. Joining the result
// gives back text exactly.
func splitWords(text string) []string {
	var words []string
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if inSpace && !space {
			words = append(words, text[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(text) {
		words = append(words, text[start:])
	}
	return words
}

// Indicator is the transient "Thinking..." spinner. A nil *Indicator is
// valid and does nothing.
type Indicator struct {
	out   io.Writer
	label string
	spin  spinner.Spinner
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// StartIndicator starts animating label on out until Stop.
func StartIndicator(out io.Writer, label string) *Indicator {
	ind := &Indicator{
		out:   out,
		label: label,
		spin:  spinner.MiniDot,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go ind.run()
	return ind
}

func (i *Indicator) run() {
	defer close(i.done)

	ticker := time.NewTicker(i.spin.FPS)
	defer ticker.Stop()

	frame := 0
	for {
		fmt.Fprintf(i.out, "\r%s %s", i.spin.Frames[frame], i.label)
		select {
		case <-i.stop:
			// Erase the indicator line.
			fmt.Fprint(i.out, "\r\033[K")
			return
		case <-ticker.C:
			frame = (frame + 1) % len(i.spin.Frames)
		}
	}
}

// Stop erases the indicator and waits for its goroutine to exit.
func (i *Indicator) Stop() {
	if i == nil {
		return
	}
	i.once.Do(func() { close(i.stop) })
	<-i.done
}
