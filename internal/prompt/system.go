package prompt

import (
	"fmt"
	"strings"

	"rafeyshell/internal/config"
)

// BuildSystemPrompt renders the profile, the optional profile document and
// the fixed behavioral guidelines. doc may be nil.
func BuildSystemPrompt(p config.UserProfile, doc *config.ProfileDocument) string {
	var sb strings.Builder

	name := firstName(p.Name)
	fmt.Fprintf(&sb, "You are %s's assistant and you know everything about them. ", name)
	fmt.Fprintf(&sb, "You answer questions from any user about %s based on the information below. ", name)
	sb.WriteString("If you don't know the answer, you say so.\n\n")

	sb.WriteString("USER PROFILE:\n")
	sb.WriteString(ProfileSummary(p))
	sb.WriteString("\n")
	if doc != nil {
		writeLine(&sb, "Home Location", doc.HomeLocation)
		writeLine(&sb, "Current Location", doc.CurrentLocation)
		writeLine(&sb, "Current Role", doc.CurrentRole)
	}
	sb.WriteString("\n")

	if !doc.IsEmpty() {
		writeDocument(&sb, doc)
	}

	sb.WriteString("BEHAVIORAL GUIDELINES:\n")
	fmt.Fprintf(&sb, "- Be %s in your responses\n", p.Preferences.ResponseStyle)
	sb.WriteString(`- Reference their interests and profession when relevant
- Assume they are an expert in their field
- Provide code examples in their preferred languages when applicable
- Be casual and friendly, like talking to a colleague
- Reference previous conversations when relevant
- Focus on practical, actionable advice
- Don't repeat their questions back to them
- Be direct and get to the point quickly

RESPONSE FORMAT:
- Use markdown formatting when helpful
- Include code blocks for technical solutions
- Use emojis sparingly and appropriately
- Keep responses focused and scannable
- Prioritize clarity and usefulness
`)
	fmt.Fprintf(&sb, "- Refer to the user as %s rather than by their full name\n\n", name)
	sb.WriteString("Remember: You're integrated into their terminal workflow, so responses should be optimized for terminal viewing and practical use.")

	return sb.String()
}

func writeDocument(sb *strings.Builder, doc *config.ProfileDocument) {
	if doc.Biography != "" {
		sb.WriteString("USER BIOGRAPHY:\n")
		sb.WriteString(strings.TrimSpace(doc.Biography))
		sb.WriteString("\n\n")
	}

	if len(doc.Experience) > 0 {
		sb.WriteString("USER PROFESSIONAL EXPERIENCE:\n")
		for _, e := range doc.Experience {
			fmt.Fprintf(sb, "- %s at %s", e.Role, e.Organization)
			if e.Period != "" {
				fmt.Fprintf(sb, " (%s)", e.Period)
			}
			if e.Summary != "" {
				fmt.Fprintf(sb, ": %s", strings.TrimSpace(e.Summary))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(doc.Education) > 0 {
		sb.WriteString("EDUCATION:\n")
		for _, e := range doc.Education {
			fmt.Fprintf(sb, "- %s from %s", e.Degree, e.Institution)
			if e.Period != "" {
				fmt.Fprintf(sb, " (%s)", e.Period)
			}
			if e.Thesis != "" {
				fmt.Fprintf(sb, ": Thesis on %s", e.Thesis)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	writeList(sb, "USER PERSONAL PROJECTS", doc.Projects)
	writeList(sb, "USER PERSONALITY", doc.Personality)
	writeList(sb, "USER HOBBIES", doc.Hobbies)
	writeList(sb, "NOTES", doc.Notes)
}

func writeLine(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", key, value)
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "the user"
}
