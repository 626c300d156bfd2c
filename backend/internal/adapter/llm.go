package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"recipe-graph/backend/pkg/logger"
)

// LLMAdapter handles communication with an OpenAI-compatible chat endpoint
type LLMAdapter struct {
	client        *openai.Client
	model         string
	maxAttempts   int
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter. An empty baseURL targets the
// public OpenAI API; anything else is treated as a compatible proxy.
func NewLLMAdapter(baseURL, apiKey, modelID string) *LLMAdapter {
	// Local proxies accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		baseURL = strings.TrimRight(baseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		config.BaseURL = baseURL
	}

	return &LLMAdapter{
		client:        openai.NewClientWithConfig(config),
		model:         modelID,
		maxAttempts:   3,
		retryInterval: time.Second,
		logger:        logger.Named("llm"),
	}
}

// DescribeImage sends one image with an instruction and returns the model's
// JSON reply. imageURL may be an https URL or a base64 data URL.
func (a *LLMAdapter) DescribeImage(ctx context.Context, systemPrompt, userMsg, imageURL string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: userMsg},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = a.retryInterval
	expo.MaxElapsedTime = 0 // bounded by maxAttempts instead
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(a.maxAttempts-1)), ctx)

	var resp openai.ChatCompletionResponse
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		a.logger.Warn("Retrying LLM request",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.String("model", a.model),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		a.logger.Error("LLM request failed", zap.Error(err), zap.Int("attempts", attempt))
		return "", fmt.Errorf("failed to generate response after %d attempts: %w", attempt, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	content := resp.Choices[0].Message.Content
	a.logger.Debug("LLM image response generated",
		zap.String("model", a.model),
		zap.Int("content_length", len(content)),
	)
	return content, nil
}

// retryable reports whether a failed completion is worth another attempt.
// Client errors other than rate limiting are final.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= http.StatusInternalServerError || apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= http.StatusInternalServerError || reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return true
}
