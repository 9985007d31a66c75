package deepseek

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

	"github.com/kidani/kidani-backend/internal/logger"
	"github.com/kidani/kidani-backend/internal/pkg/httpx"
	"github.com/kidani/kidani-backend/internal/types"
)

// Client turns a lesson topic into an ordered scene script via a
// DeepSeek-compatible chat-completions API. Any failure here is fatal for the
// calling job, so errors are returned as-is rather than swallowed.
type Client interface {
	GenerateScript(ctx context.Context, topic, character string) ([]types.Scene, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger, baseURL, apiKey, model string, timeout time.Duration) Client {
	return &client{
		log:        log.With("component", "DeepSeekClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 2,
	}
}

type dsHTTPError struct {
	StatusCode int
	Body       string
}

func (e *dsHTTPError) Error() string {
	return fmt.Sprintf("deepseek: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *dsHTTPError) HTTPStatusCode() int { return e.StatusCode }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type scriptPayload struct {
	Scenes []types.Scene `json:"scenes"`
}

const systemPrompt = "You are a math tutor scriptwriter for young children. " +
	"Output JSON with a 'scenes' array; each scene has 'title', 'visual_prompt' and 'narration'."

func (c *client) GenerateScript(ctx context.Context, topic, character string) ([]types.Scene, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Create a 2-scene math lesson about %s. The lesson is presented by %s.", topic, character)},
		},
	}
	req.ResponseFormat.Type = "json_object"

	var resp chatResponse
	if err := c.do(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("deepseek: response has no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var script scriptPayload
	if err := json.Unmarshal([]byte(content), &script); err != nil {
		return nil, fmt.Errorf("deepseek: parse script JSON: %w", err)
	}
	if len(script.Scenes) == 0 {
		return nil, errors.New("deepseek: script contains no scenes")
	}
	return script.Scenes, nil
}

func (c *client) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &dsHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("deepseek decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("DeepSeek request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}
