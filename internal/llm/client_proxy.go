package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rafeyshell/internal/logging"
)

// ProxyConfig holds configuration for the proxy client.
type ProxyConfig struct {
	Endpoint   string
	Token      string
	HTTPClient *http.Client
}

// ProxyClient implements Client against the /api/chat proxy endpoint.
type ProxyClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// ProxyRequest is the body POSTed to the proxy.
type ProxyRequest struct {
	Prompt  string    `json:"prompt"`
	History []Message `json:"history"`
}

// ProxyResponse covers both the success and the error body.
type ProxyResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

// NewProxyClient creates a proxy client. Deadlines come from the query context.
func NewProxyClient(cfg ProxyConfig) *ProxyClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ProxyClient{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

// Name returns the backend name used in messages.
func (c *ProxyClient) Name() string { return "the proxy" }

// Query POSTs the combined prompt and history to the proxy.
func (c *ProxyClient) Query(ctx context.Context, payload Payload) (string, error) {
	if c.endpoint == "" {
		return "", missingCredential(c.Name(), "No proxy endpoint configured. Set RAFEY_SHELL_API_URL or run: rafey config")
	}

	history := payload.History
	if history == nil {
		history = []Message{}
	}
	body, err := json.Marshal(ProxyRequest{Prompt: payload.Combined(), History: history})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	logging.APIDebug("[Proxy] POST %s: prompt_len=%d history=%d", c.endpoint, len(payload.Combined()), len(history))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("[Proxy] Request failed: %v", err)
		return "", classify(c.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(c.Name(), fmt.Errorf("failed to read response: %w", err))
	}

	var decoded ProxyResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := decoded.Error
		if detail != "" && decoded.Details != "" {
			detail += ": " + decoded.Details
		}
		logging.Get(logging.CategoryAPI).Error("[Proxy] Status %d: %s", resp.StatusCode, string(raw))
		return "", fromStatus(c.Name(), resp.StatusCode, detail, nil)
	}
	if decodeErr != nil {
		return "", &Error{Kind: KindBackend, Backend: c.Name(), Detail: "invalid response from proxy", Err: decodeErr}
	}

	logging.API("[Proxy] Query completed in %v: response_len=%d", time.Since(start), len(decoded.Response))
	return orPlaceholder(decoded.Response), nil
}
