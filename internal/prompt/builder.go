// Package prompt assembles the system and contextual prompts sent to the model.
// Everything here is pure: the environment is passed in.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"rafeyshell/internal/config"
	"rafeyshell/internal/history"
)

const (
	// ContextEntries is how many past exchanges are replayed to the model.
	ContextEntries = 3
	// ContextResponseLimit caps each replayed response, in characters.
	ContextResponseLimit = 200

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Environment is the ambient state embedded in the contextual prompt.
type Environment struct {
	WorkingDir string
	Now        time.Time
}

// CurrentEnvironment captures the process working directory and clock.
func CurrentEnvironment() Environment {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Environment{WorkingDir: wd, Now: time.Now()}
}

// BuildContextualPrompt renders recent exchanges, the environment and the
// query. The context section is omitted entirely when recent is empty. Only
// the last ContextEntries of recent are used.
func BuildContextualPrompt(query string, recent []history.Entry, env Environment) string {
	var sb strings.Builder

	if len(recent) > ContextEntries {
		recent = recent[len(recent)-ContextEntries:]
	}
	if len(recent) > 0 {
		sb.WriteString("RECENT CONVERSATION CONTEXT:\n")
		for i, e := range recent {
			fmt.Fprintf(&sb, "%d. User: %s\n", i+1, e.Query)
			fmt.Fprintf(&sb, "   Assistant: %s\n\n", Truncate(e.Response, ContextResponseLimit))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("CURRENT CONTEXT:\n")
	fmt.Fprintf(&sb, "- Working Directory: %s\n", env.WorkingDir)
	fmt.Fprintf(&sb, "- Timestamp: %s\n\n", env.Now.UTC().Format(timestampLayout))
	fmt.Fprintf(&sb, "USER QUERY: %s", query)

	return sb.String()
}

// Combine joins the two prompts for backends that take a single string.
func Combine(system, contextual string) string {
	return system + "\n\n" + contextual
}

// Truncate keeps at most limit characters of s and marks the cut with "...".
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// ProfileSummary renders the profile as "- Key: value" lines, as shown by /profile.
func ProfileSummary(p config.UserProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Name: %s\n", p.Name)
	fmt.Fprintf(&sb, "- Profession: %s\n", p.Profession)
	fmt.Fprintf(&sb, "- Interests: %s\n", strings.Join(p.Interests, ", "))
	fmt.Fprintf(&sb, "- Preferred Languages: %s\n", strings.Join(p.Preferences.CodeLanguages, ", "))
	fmt.Fprintf(&sb, "- Response Style: %s", p.Preferences.ResponseStyle)
	return sb.String()
}
