// Package completion sends assembled conversations to an OpenAI-compatible
// chat-completion endpoint and classifies its failures.
package completion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"

	"github.com/BerylCAtieno/document-chat/internal/config"
	"github.com/BerylCAtieno/document-chat/internal/models"
	"github.com/BerylCAtieno/document-chat/internal/prompt"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

type Client interface {
	Complete(ctx context.Context, messages []models.Message, mode prompt.Mode) (string, error)
}

// UpstreamError is a non-success answer from the completion API.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API Error: %d", e.StatusCode)
}

// NetworkError is a failure to reach the completion API at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type chatClient struct {
	client              *openai.Client
	model               string
	maxTokens           int
	documentTemperature float32
	chatTemperature     float32
	logger              *utils.Logger
}

// NewClient creates a client for cfg. It fails with config.ErrMissingAPIKey
// when no credential is configured.
func NewClient(cfg *config.Config, logger *utils.Logger) (Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout: cfg.RequestTimeout(),
	}

	return &chatClient{
		client:              openai.NewClientWithConfig(clientCfg),
		model:               cfg.Model,
		maxTokens:           cfg.MaxTokens,
		documentTemperature: float32(cfg.DocumentTemperature),
		chatTemperature:     float32(cfg.ChatTemperature),
		logger:              logger,
	}, nil
}

// Complete sends one non-streaming request and returns the first choice.
func (c *chatClient) Complete(ctx context.Context, messages []models.Message, mode prompt.Mode) (string, error) {
	temperature := c.chatTemperature
	if mode == prompt.ModeDocument {
		temperature = c.documentTemperature
	}
	// go-openai omits a zero temperature from the request body.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	}

	c.logger.Debug("Sending completion request",
		"model", c.model,
		"mode", string(mode),
		"messages", len(messages),
		"temperature", temperature)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		classified := classify(err)
		c.logger.Error("Completion request failed", "error", err, "mode", string(mode))
		return "", classified
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{StatusCode: http.StatusOK, Message: "no choices in response"}
	}

	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

// classify maps go-openai errors onto UpstreamError and NetworkError.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &NetworkError{Err: err}
	}

	return &UpstreamError{Message: fmt.Sprintf("completion request failed: %v", err)}
}
