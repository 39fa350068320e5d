package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"hairalyzer-backend/internal/llm"
	"hairalyzer-backend/internal/shared/metrics"
	"hairalyzer-backend/internal/shared/telemetry"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultTimeout    = 120 * time.Second
	visionMaxTokens   = 1500
	chatMaxTokens     = 600
	imageDetailLevel  = "auto"
	maxErrorBodyBytes = 4 << 10
)

// Config configures Client.
type Config struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	ChatModel   string
	Timeout     time.Duration
}

// Client implements llm.Client using OpenAI Chat Completions. Each call gets one
// attempt bounded by the configured timeout.
type Client struct {
	apiKey      string
	baseURL     string
	visionModel string
	chatModel   string
	httpClient  *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.VisionModel) == "" {
		return nil, fmt.Errorf("VISION_MODEL is required for OpenAI")
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = cfg.VisionModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		visionModel: cfg.VisionModel,
		chatModel:   chatModel,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *usage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AnalyzeHair sends all photo URLs and the rendered questionnaire prompt in one request.
func (c *Client) AnalyzeHair(ctx context.Context, input llm.HairInput) (string, error) {
	if len(input.PhotoURLs) == 0 {
		return "", fmt.Errorf("analyze hair: no photo urls")
	}
	prompt, err := llm.BuildHairPrompt(input)
	if err != nil {
		return "", err
	}

	parts := make([]contentPart, 0, len(input.PhotoURLs)+1)
	parts = append(parts, contentPart{Type: "text", Text: prompt})
	for _, u := range input.PhotoURLs {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: u, Detail: imageDetailLevel}})
	}

	metrics.IncVisionRequest()
	start := time.Now()
	text, err := c.complete(ctx, "vision", chatRequest{
		Model:     c.visionModel,
		Messages:  []chatMessage{{Role: llm.RoleUser, Content: parts}},
		MaxTokens: visionMaxTokens,
	})
	metrics.ObserveVisionDuration(time.Since(start))
	if err != nil {
		metrics.IncVisionFailure()
		return "", err
	}
	return text, nil
}

// Chat completes a plain-text conversation.
func (c *Client) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("chat: no messages")
	}
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	return c.complete(ctx, "chat", chatRequest{
		Model:     c.chatModel,
		Messages:  reqMessages,
		MaxTokens: chatMaxTokens,
	})
}

func (c *Client) complete(ctx context.Context, purpose string, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		}
		return "", fmt.Errorf("openai read body: %w", err)
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)
	if parseErr == nil && parsed.Error != nil {
		return "", fmt.Errorf("openai error status=%d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode, truncate(body, maxErrorBodyBytes))
	}
	if parseErr != nil {
		return "", fmt.Errorf("openai response parse: %w", parseErr)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}

	logUsage(purpose, reqBody.Model, parsed.Choices[0].FinishReason, parsed.Usage)
	return content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return strings.TrimSpace(string(b))
}

func logUsage(purpose, model, finishReason string, u *usage) {
	fields := map[string]any{
		"purpose":       purpose,
		"model":         model,
		"finish_reason": finishReason,
	}
	if u != nil {
		fields["prompt_tokens"] = u.PromptTokens
		fields["completion_tokens"] = u.CompletionTokens
		fields["total_tokens"] = u.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Client = (*Client)(nil)
