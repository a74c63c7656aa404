package repurpose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/suteetoe/repurpose/pkg/config"
)

// mockSnippetLength caps how much of the source the mock client echoes back
const mockSnippetLength = 400

// ErrEmptyCompletion is returned when the model answers without any choices
var ErrEmptyCompletion = errors.New("model returned no choices")

// CompletionRequest carries everything a client needs for one platform call.
// Source is the raw content; the mock client echoes it, real clients only use Prompt.
type CompletionRequest struct {
	Platform Platform
	Source   string
	Prompt   string
}

// Client turns a prompt into model text
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewClient returns a ChatClient when an API key is configured and a
// MockClient otherwise
func NewClient(cfg config.LLMConfig) Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return MockClient{}
	}
	return NewChatClient(cfg)
}

// IsMock reports whether c produces placeholder output
func IsMock(c Client) bool {
	_, ok := c.(MockClient)
	return ok
}

// MockClient answers deterministically without any network call
type MockClient struct{}

// Complete returns "[MOCK PLATFORM] " followed by the first 400 characters
// of the trimmed source text
func (MockClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	snippet := []rune(strings.TrimSpace(req.Source))
	if len(snippet) > mockSnippetLength {
		snippet = snippet[:mockSnippetLength]
	}
	return fmt.Sprintf("[MOCK %s] %s", strings.ToUpper(string(req.Platform)), string(snippet)), nil
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint
type ChatClient struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// NewChatClient creates a chat completions client from configuration
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatClient{
		BaseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// APIError is a non-2xx answer from the completions endpoint
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat completion failed: %d %s", e.StatusCode, e.Message)
}

// Complete sends the system framing plus the prompt and returns the first choice's text
func (c *ChatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			msg = errorResp.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return chatResp.Choices[0].Message.Content, nil
}
