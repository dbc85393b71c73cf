package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"call-logs-go/internal/logger"
)

const summaryPrompt = `Summarize the following call record in one or two short sentences (at most 50 words). Mention who spoke and what the call was about. Return only the summary text, no preamble.

CALL RECORD:
%s`

// GatewayClient talks to an OpenAI-compatible chat-completions gateway.
type GatewayClient struct {
	URL    string
	APIKey string
	Model  string

	// HTTPTimeout bounds a single attempt, MaxRetryTime the whole call.
	HTTPTimeout  time.Duration
	MaxRetryTime time.Duration

	httpClient *http.Client
}

func NewGatewayClient(url, apiKey, model string) *GatewayClient {
	return &GatewayClient{
		URL:          url,
		APIKey:       apiKey,
		Model:        model,
		HTTPTimeout:  12 * time.Second,
		MaxRetryTime: 25 * time.Second,
	}
}

func (c *GatewayClient) Summarize(ctx context.Context, recordText string) (string, error) {
	log := logger.Component("enricher")

	if c.URL == "" || c.APIKey == "" {
		return "", fmt.Errorf("llm gateway not configured")
	}

	reqBody := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(summaryPrompt, recordText)},
		},
		"temperature": 0.2,
		"max_tokens":  80,
	}
	data, _ := json.Marshal(reqBody)

	client := c.httpClient
	if client == nil {
		client = &http.Client{Timeout: c.HTTPTimeout}
	}

	var summary string
	var lastErr error

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.HTTPTimeout)
		defer cancel()

		req, _ := http.NewRequestWithContext(attemptCtx, "POST", c.URL, bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		log.WithField("http_status", resp.StatusCode).Debug("llm response received")

		if text := contentFromChoices(body); text != "" {
			summary = text
			lastErr = nil
			return nil
		}

		lastErr = fmt.Errorf("no summary text in LLM output (status %d)", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Permanent: don't retry on client errors
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.MaxRetryTime

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("summarize failed: %w", lastErr)
	}
	return summary, nil
}

// contentFromChoices reads the openai-style choices[0].message.content field.
func contentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return strings.TrimSpace(content)
}
