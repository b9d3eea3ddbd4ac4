package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kpireport/internal/errors"
	"kpireport/models"
	"kpireport/ports"
)

const providerOpenAI = "openai"

// NewClient creates an LLM client based on config. Dry runs get a DebugClient
// that never touches the network.
func NewClient(config models.AIConfig) (ports.LLMClient, error) {
	if config.DryRun {
		return &DebugClient{}, nil
	}
	if config.OpenAIKey == "" {
		return nil, errors.ConfigInvalid("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = models.DefaultAIConfig().BaseURL
	}

	return &OpenAIClient{
		APIKey:      config.OpenAIKey,
		BaseURL:     baseURL,
		Model:       config.Model,
		Timeout:     config.Timeout,
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
		HTTPClient:  &http.Client{Timeout: config.Timeout},
	}, nil
}

// MockLLMClient is a mock LLM client for testing
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
	Requests []ports.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*models.LLMResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Error != nil {
		return nil, m.Error
	}
	return &models.LLMResponse{Content: m.Response}, nil
}

// DebugClient answers every request with a fixed marker instead of calling the API
type DebugClient struct{}

// DebugAnswer is returned for every DebugClient call
const DebugAnswer = "DEBUG\nOPENAI ANSWER"

func (DebugClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*models.LLMResponse, error) {
	return &models.LLMResponse{
		Content: DebugAnswer,
		Usage:   &models.UsageData{Model: req.Model, Provider: "debug"},
	}, nil
}

// OpenAIClient implements LLMClient for the OpenAI chat completions API
type OpenAIClient struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

type chatRequestBody struct {
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Messages    []ports.ChatMessage `json:"messages"`
}

type chatResponseBody struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *models.UsageData `json:"usage"`
}

func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (*models.LLMResponse, error) {
	body := chatRequestBody{
		Model:       req.Model,
		Temperature: c.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    req.Messages,
	}
	if body.Model == "" {
		body.Model = c.Model
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = c.MaxTokens
	}
	if strings.TrimSpace(body.Model) == "" {
		return nil, errors.InvalidInput("missing model")
	}
	if len(body.Messages) == 0 {
		return nil, errors.InvalidInput("no messages to send")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errors.ExternalServiceError(providerOpenAI, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(providerOpenAI, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ExternalServiceError(providerOpenAI, fmt.Errorf("http %d: %s", resp.StatusCode, string(respRaw)))
	}

	var decoded chatResponseBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, errors.ExternalServiceError(providerOpenAI, fmt.Errorf("unmarshal response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.ExternalServiceError(providerOpenAI, fmt.Errorf("response missing choices"))
	}

	usage := decoded.Usage
	if usage == nil {
		usage = &models.UsageData{}
	}
	usage.Provider = providerOpenAI
	usage.Model = decoded.Model
	if usage.Model == "" {
		usage.Model = body.Model
	}

	return &models.LLMResponse{
		Content: decoded.Choices[0].Message.Content,
		Usage:   usage,
	}, nil
}
