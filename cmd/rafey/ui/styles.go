// Package ui provides the visual styling for the rafey-shell terminal
// front ends, with light and dark palettes.
package ui

import (
	"os"
	"strconv"
	"strings"

	"rafeyshell/internal/shell"

	"github.com/charmbracelet/lipgloss"
)

// DarkModeEnv forces the dark palette when "1" and the light one for any
// other non-empty value.
const DarkModeEnv = "RAFEY_SHELL_DARK_MODE"

// Theme is one palette. Semantic colors differ per background so they
// stay readable on both.
type Theme struct {
	Name string

	Text   lipgloss.Color
	Brand  lipgloss.Color // banner, headings
	Link   lipgloss.Color // prompt, accents
	Dim    lipgloss.Color // secondary text
	Rule   lipgloss.Color // dividers
	Good   lipgloss.Color
	Notice lipgloss.Color
	Bad    lipgloss.Color

	IsDark bool
}

// LightTheme suits light terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Name:   "light",
		Text:   lipgloss.Color("#24292f"),
		Brand:  lipgloss.Color("#b4451f"), // rust orange
		Link:   lipgloss.Color("#0b6e99"),
		Dim:    lipgloss.Color("#6e7781"),
		Rule:   lipgloss.Color("#d0d7de"),
		Good:   lipgloss.Color("#1a7f37"),
		Notice: lipgloss.Color("#9a6700"),
		Bad:    lipgloss.Color("#cf222e"),
	}
}

// DarkTheme suits dark terminal backgrounds.
func DarkTheme() Theme {
	return Theme{
		Name:   "dark",
		Text:   lipgloss.Color("#d8dee9"),
		Brand:  lipgloss.Color("#f0883e"),
		Link:   lipgloss.Color("#58b4d1"),
		Dim:    lipgloss.Color("#8b949e"),
		Rule:   lipgloss.Color("#30363d"),
		Good:   lipgloss.Color("#56d364"),
		Notice: lipgloss.Color("#e3b341"),
		Bad:    lipgloss.Color("#f85149"),
		IsDark: true,
	}
}

// ThemeNamed resolves the ux.theme setting. "light" and "dark" are
// explicit; "auto", empty or unknown names detect.
func ThemeNamed(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme picks a palette from RAFEY_SHELL_DARK_MODE, then COLORFGBG,
// then defaults to dark.
func DetectTheme() Theme {
	if v := os.Getenv(DarkModeEnv); v != "" {
		if v == "1" {
			return DarkTheme()
		}
		return LightTheme()
	}
	if dark, ok := darkBackground(os.Getenv("COLORFGBG")); ok && !dark {
		return LightTheme()
	}
	return DarkTheme()
}

// darkBackground reads the background index, the last field of a
// "fg;bg" or "fg;default;bg" COLORFGBG value. ANSI 0-6 and 8 are dark.
func darkBackground(colorfgbg string) (dark, ok bool) {
	if colorfgbg == "" {
		return false, false
	}
	fields := strings.Split(colorfgbg, ";")
	bg, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return false, false
	}
	return bg <= 6 || bg == 8, true
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Title     lipgloss.Style
	Muted     lipgloss.Style
	Prompt    lipgloss.Style
	UserInput lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Spinner   lipgloss.Style
	Divider   lipgloss.Style
	Footer    lipgloss.Style
}

// NewStyles builds styles for theme.
func NewStyles(theme Theme) Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return Styles{
		Theme:     theme,
		Title:     fg(theme.Brand).Bold(true),
		Muted:     fg(theme.Dim),
		Prompt:    fg(theme.Link).Bold(true),
		UserInput: fg(theme.Text),
		Success:   fg(theme.Good).Bold(true),
		Warning:   fg(theme.Notice).Bold(true),
		Error:     fg(theme.Bad).Bold(true),
		Spinner:   fg(theme.Link),
		Divider:   fg(theme.Rule),
		Footer:    fg(theme.Dim).Padding(0, 1),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Shell maps the palette onto the line terminal's styles. None of them
// pad or add margins, so single lines stay single lines.
func (s Styles) Shell() *shell.Styles {
	return &shell.Styles{
		Title:   s.Title,
		Muted:   s.Muted,
		Accent:  lipgloss.NewStyle().Foreground(s.Theme.Link),
		Success: s.Success,
		Warning: s.Warning,
		Error:   s.Error,
	}
}

// RenderDivider returns a horizontal rule width cells wide.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", max(width, 0)))
}
