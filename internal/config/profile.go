package config

import (
	"fmt"
	"strings"
)

// ResponseStyle is the preferred register of model answers.
type ResponseStyle string

const (
	StyleConcise   ResponseStyle = "concise"
	StyleDetailed  ResponseStyle = "detailed"
	StyleTechnical ResponseStyle = "technical"
)

// ResponseStyles lists the valid styles in display order.
var ResponseStyles = []ResponseStyle{StyleConcise, StyleDetailed, StyleTechnical}

// ParseResponseStyle validates a user-supplied style name.
func ParseResponseStyle(s string) (ResponseStyle, error) {
	style := ResponseStyle(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ResponseStyles {
		if style == valid {
			return style, nil
		}
	}
	return "", fmt.Errorf("invalid response style %q (valid: concise, detailed, technical)", s)
}

// Preferences holds answer-shaping preferences.
type Preferences struct {
	ResponseStyle ResponseStyle `json:"response_style"`
	CodeLanguages []string      `json:"code_languages"`
}

// UserProfile is the static description of the user the assistant serves.
// It is read-only for the lifetime of a session.
type UserProfile struct {
	Name             string      `json:"name"`
	Profession       string      `json:"profession"`
	Interests        []string    `json:"interests"`
	WorkingDirectory string      `json:"working_directory,omitempty"`
	Preferences      Preferences `json:"preferences"`
}

// DefaultProfile mirrors the setup wizard defaults.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:       "Rafey",
		Profession: "Software Developer",
		Interests:  []string{"programming", "ai", "technology"},
		Preferences: Preferences{
			ResponseStyle: StyleTechnical,
			CodeLanguages: []string{"typescript", "python", "javascript"},
		},
	}
}

// Normalized trims fields, gives Interests set semantics (first occurrence
// wins, case-insensitive) and falls back to the technical style.
func (p UserProfile) Normalized() UserProfile {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	out.Profession = strings.TrimSpace(p.Profession)
	out.Interests = uniqueItems(p.Interests)
	out.Preferences.CodeLanguages = cleanItems(p.Preferences.CodeLanguages)
	if style, err := ParseResponseStyle(string(p.Preferences.ResponseStyle)); err == nil {
		out.Preferences.ResponseStyle = style
	} else {
		out.Preferences.ResponseStyle = StyleTechnical
	}
	return out
}

// SplitList splits a comma-separated answer into trimmed, non-empty items.
func SplitList(s string) []string {
	return cleanItems(strings.Split(s, ","))
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func uniqueItems(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range cleanItems(items) {
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
