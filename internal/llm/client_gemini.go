package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rafeyshell/internal/logging"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string       // optional, for tests and gateways
	HTTPClient *http.Client // optional
}

// GeminiClient implements Client with the Google GenAI SDK.
type GeminiClient struct {
	sdk   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini client. An empty API key is not an error
// here; Query reports it as ErrConfigurationMissing.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	c := &GeminiClient{model: model}
	if cfg.APIKey == "" {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	sdk, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.sdk = sdk
	return c, nil
}

// Name returns the backend name used in messages.
func (c *GeminiClient) Name() string { return "Gemini" }

// Model returns the model in use.
func (c *GeminiClient) Model() string { return c.model }

// Query sends the payload as system instruction, history and final user turn.
func (c *GeminiClient) Query(ctx context.Context, payload Payload) (string, error) {
	if c.sdk == nil {
		return "", missingCredential(c.Name(), "")
	}

	start := time.Now()
	logging.APIDebug("[Gemini] Query: model=%s system_len=%d prompt_len=%d history=%d",
		c.model, len(payload.System), len(payload.Prompt), len(payload.History))

	contents := make([]*genai.Content, 0, len(payload.History)+1)
	for _, m := range payload.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(payload.Prompt, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](Temperature),
		MaxOutputTokens: MaxOutputTokens,
	}
	if payload.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(payload.System, genai.RoleUser)
	}

	resp, err := c.sdk.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		classified := classifyGemini(err)
		logging.Get(logging.CategoryAPI).Error("[Gemini] Query failed after %v: %v", time.Since(start), err)
		return "", classified
	}

	text := resp.Text()
	logging.API("[Gemini] Query completed in %v: response_len=%d", time.Since(start), len(text))
	return orPlaceholder(text), nil
}

// classifyGemini maps SDK API errors onto Kinds. An invalid key comes back
// as 400 API_KEY_INVALID rather than 401.
func classifyGemini(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return classify("Gemini", err)
	}

	if isInvalidKey(apiErr) {
		return &Error{Kind: KindUnauthorized, Backend: "Gemini", Detail: apiErr.Message, Err: err}
	}
	detail := apiErr.Message
	if detail == "" {
		detail = apiErr.Status
	}
	return fromStatus("Gemini", apiErr.Code, detail, err)
}

func isInvalidKey(apiErr genai.APIError) bool {
	if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
		return true
	}
	if apiErr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(apiErr.Message, "API key not valid") ||
		strings.Contains(apiErr.Message, "API_KEY_INVALID") ||
		strings.Contains(apiErr.Status, "API_KEY_INVALID")
}
