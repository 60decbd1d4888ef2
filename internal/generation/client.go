// Package generation turns a customer message and its context bundle into a
// natural-language reply through an OpenAI-compatible chat completions API.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "support-chatbot/internal/common/errors"
	httpclient "support-chatbot/internal/common/http"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/models"
)

// Apology is the reply used whenever generation fails.
const Apology = "I apologize, but I'm having trouble processing your request right now. Please try again later."

var (
	ErrGenerationFailed  = errors.New("LLM_GENERATION_FAILED")
	ErrGenerationTimeout = errors.New("LLM_TIMEOUT")
)

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

type Client struct {
	config *Config
	http   *httpclient.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		http:   httpclient.NewClient(0),
		logger: log.WithFields(map[string]interface{}{"component": "generation"}),
	}
}

// Generate never returns an error; any failure or an empty completion yields Apology.
func (c *Client) Generate(ctx context.Context, message string, bundle models.ContextBundle) string {
	start := time.Now()
	userPrompt := BuildUserPrompt(message, bundle, c.config.MaxContextTokens)

	text, err := c.complete(ctx, SystemPrompt, userPrompt, c.config.Temperature, c.config.MaxTokens)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}
	if err != nil {
		stdErr := c.classify(err)
		metrics.GenerationFailuresTotal.Inc()
		c.logger.Error("generation failed, returning apology", map[string]interface{}{
			"error":       err.Error(),
			"errorCode":   stdErr.Code,
			"contextKeys": bundle.Keys(),
		})
		return Apology
	}

	c.logger.Info("generation completed", map[string]interface{}{
		"contextKeys":  bundle.Keys(),
		"promptTokens": CountTokens(userPrompt),
		"durationMs":   time.Since(start).Milliseconds(),
	})
	return text
}

// complete runs one chat completion with retries and returns the first
// choice's content.
func (c *Client) complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	payload := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.config.APIKey
	}
	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"

	var (
		body    []byte
		lastErr error
	)
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrGenerationTimeout
			}
		}

		var status int
		status, body, lastErr = c.http.PostJSON(ctx, url, headers, payload)
		if lastErr == nil {
			if status == http.StatusOK {
				break
			}
			lastErr = fmt.Errorf("status %d: %s", status, truncate(string(body), 200))
			body = nil
			if !retryableStatus(status) {
				break
			}
		}

		if ctx.Err() != nil {
			return "", ErrGenerationTimeout
		}
		c.logger.Warn("completion attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}

	if lastErr != nil {
		if errors.Is(lastErr, context.DeadlineExceeded) {
			return "", ErrGenerationTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("%w: response has no choices", ErrGenerationFailed)
	}
	return content.String(), nil
}

// classify maps a completion error onto the shared error codes for logging.
func (c *Client) classify(err error) *apperrors.StandardError {
	if errors.Is(err, ErrGenerationTimeout) {
		return apperrors.NewLLMTimeoutError(c.config.Timeout)
	}
	return apperrors.NewLLMGenerationFailedError(err)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
