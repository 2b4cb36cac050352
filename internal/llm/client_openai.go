package llm

import (
	"context"
	"errors"
	"time"

	"rafeyshell/internal/logging"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for tests and compatible gateways
}

// OpenAIClient implements Client with the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	apiKey string
	model  string
}

// NewOpenAIClient creates a new OpenAI client. Retries are disabled; each
// query is a single attempt.
func NewOpenAIClient(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAIClient {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	options = append(options, opts...)

	return &OpenAIClient{
		client: openai.NewClient(options...),
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// Name returns the backend name used in messages.
func (c *OpenAIClient) Name() string { return "OpenAI" }

// Model returns the model in use.
func (c *OpenAIClient) Model() string { return c.model }

// Query sends system, history and prompt as chat messages.
func (c *OpenAIClient) Query(ctx context.Context, payload Payload) (string, error) {
	if c.apiKey == "" {
		return "", missingCredential(c.Name(), "No API key configured. Set OPENAI_API_KEY or run: rafey config")
	}

	start := time.Now()
	logging.APIDebug("[OpenAI] Query: model=%s system_len=%d prompt_len=%d history=%d",
		c.model, len(payload.System), len(payload.Prompt), len(payload.History))

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(payload.History)+2)
	if payload.System != "" {
		messages = append(messages, openai.SystemMessage(payload.System))
	}
	for _, m := range payload.History {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(payload.Prompt))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            messages,
		Temperature:         openai.Float(Temperature),
		MaxCompletionTokens: openai.Int(MaxOutputTokens),
	})
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("[OpenAI] Query failed after %v: %v", time.Since(start), err)
		return "", classifyOpenAI(err)
	}

	var text string
	if len(completion.Choices) > 0 {
		text = completion.Choices[0].Message.Content
	}
	logging.API("[OpenAI] Query completed in %v: response_len=%d", time.Since(start), len(text))
	return orPlaceholder(text), nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return classify("OpenAI", err)
	}
	detail := apiErr.Message
	if detail == "" {
		detail = apiErr.Error()
	}
	return fromStatus("OpenAI", apiErr.StatusCode, detail, err)
}
