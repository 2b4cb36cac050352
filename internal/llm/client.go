// Package llm talks to the language model backends.
package llm

import (
	"context"
	"strings"

	"rafeyshell/internal/history"
	"rafeyshell/internal/prompt"
)

// NoResponse replaces empty model output.
const NoResponse = "No response generated."

// Generation parameters shared by the SDK backends.
const (
	Temperature     = 0.7
	MaxOutputTokens = 4000
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client asks a model for a single completion.
type Client interface {
	Query(ctx context.Context, payload Payload) (string, error)
	Name() string
}

// Message is one prior chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is what a backend needs for one query. Backends with a system
// role use System and Prompt separately; others send Combined.
type Payload struct {
	System  string
	Prompt  string
	History []Message
}

// Combined returns the system and contextual prompts as one string.
func (p Payload) Combined() string {
	if p.System == "" {
		return p.Prompt
	}
	return prompt.Combine(p.System, p.Prompt)
}

// HistoryMessages maps each entry to a user message followed by an
// assistant message.
func HistoryMessages(entries []history.Entry) []Message {
	msgs := make([]Message, 0, len(entries)*2)
	for _, e := range entries {
		msgs = append(msgs,
			Message{Role: RoleUser, Content: e.Query},
			Message{Role: RoleAssistant, Content: e.Response},
		)
	}
	return msgs
}

func orPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoResponse
	}
	return text
}
