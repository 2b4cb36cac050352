package shell

import (
	"fmt"
	"slices"
	"strings"

	"rafeyshell/internal/prompt"
)

const (
	// HistoryRows is how many entries /history shows.
	HistoryRows = 5
	// HistoryPreviewLimit caps each response preview in /history.
	HistoryPreviewLimit = 100

	clearScreen = "\033[H\033[2J"
)

// CommandInfo holds metadata about a slash command.
type CommandInfo struct {
	Name        string
	Aliases     []string
	Description string
}

// Commands lists the slash commands in help order.
var Commands = []CommandInfo{
	{Name: "help", Description: "Show this help message"},
	{Name: "clear", Description: "Clear the console"},
	{Name: "history", Description: "Show recent conversation history"},
	{Name: "profile", Description: "Show your profile"},
	{Name: "exit", Aliases: []string{"quit"}, Description: "Exit the shell"},
}

// ParseCommand returns the lower-cased command name of a slash line and
// its remaining arguments.
func ParseCommand(input string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// runCommand executes a slash command. It returns false for exit.
func (s *Session) runCommand(input string) bool {
	name, _ := ParseCommand(input)
	s.log.Debug("Command: /%s", name)

	switch name {
	case "help":
		s.printHelp()
	case "clear":
		fmt.Fprint(s.out, clearScreen)
		s.PrintBanner()
	case "history":
		s.printHistory()
	case "profile":
		s.printProfile()
	case "exit", "quit":
		return false
	default:
		fmt.Fprintln(s.out, s.styles.Error.Render("Unknown command: "+name))
		s.printHelp()
	}
	return true
}

// PrintBanner prints the welcome banner.
func (s *Session) PrintBanner() {
	fmt.Fprintln(s.out, s.styles.Title.Render("🚀 Rafey Shell v"+Version))
	fmt.Fprintln(s.out, s.styles.Muted.Render(fmt.Sprintf("Welcome back, %s!", s.profile.Name)))
	fmt.Fprintln(s.out, s.styles.Muted.Render("Type your questions and get AI-powered responses."))
	fmt.Fprintln(s.out, s.styles.Muted.Render("Commands: /help, /clear, /history, /profile, /exit"))
	fmt.Fprintln(s.out)
}

// HelpText renders the command list without styling.
func HelpText() string {
	var sb strings.Builder
	sb.WriteString("Available Commands:\n")
	for _, c := range Commands {
		fmt.Fprintf(&sb, "  %-10s - %s", "/"+c.Name, c.Description)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&sb, " (alias: /%s)", strings.Join(c.Aliases, ", /"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.styles.Title.Render("📚 Available Commands:"))
	for _, line := range strings.Split(strings.TrimSuffix(HelpText(), "\n"), "\n")[1:] {
		fmt.Fprintln(s.out, s.styles.Muted.Render(line))
	}
	fmt.Fprintln(s.out)
}

// HistoryLines renders the /history body: numbered Q/A pairs with response
// previews capped at HistoryPreviewLimit characters.
func (s *Session) HistoryLines() []string {
	recent := slices.Collect(s.store.Recent(HistoryRows))
	if len(recent) == 0 {
		return []string{"No conversation history yet."}
	}
	lines := make([]string, 0, len(recent)*3)
	for i, e := range recent {
		lines = append(lines,
			fmt.Sprintf("%d. Q: %s", i+1, oneLine(e.Query)),
			fmt.Sprintf("   A: %s", oneLine(prompt.Truncate(e.Response, HistoryPreviewLimit))),
			"",
		)
	}
	return lines
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func (s *Session) printHistory() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.styles.Title.Render("📖 Recent History:"))
	for _, line := range s.HistoryLines() {
		switch {
		case strings.HasPrefix(strings.TrimLeft(line, "0123456789"), ". Q:"):
			fmt.Fprintln(s.out, s.styles.Accent.Render(line))
		case line == "":
			fmt.Fprintln(s.out)
		default:
			fmt.Fprintln(s.out, s.styles.Muted.Render(line))
		}
	}
	if s.store.Len() == 0 {
		fmt.Fprintln(s.out)
	}
}

func (s *Session) printProfile() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.styles.Title.Render("👤 Profile:"))
	for _, line := range strings.Split(prompt.ProfileSummary(s.profile), "\n") {
		fmt.Fprintln(s.out, s.styles.Muted.Render(line))
	}
	fmt.Fprintln(s.out)
}
