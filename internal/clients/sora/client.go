package sora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kidani/kidani-backend/internal/logger"
)

type PollState string

const (
	PollDone       PollState = "done"
	PollInProgress PollState = "in_progress"
	PollFailed     PollState = "failed"
)

// PollOutcome is the normalized result of a single status query. Status holds
// the upstream status label when the job is still in progress.
type PollOutcome struct {
	State  PollState
	URL    string
	Status string
}

// Client wraps the two video-API calls. Submit returns an opaque job handle
// that is valid only for one submit/poll cycle; PollOnce queries that handle
// once. Retry and polling policy live with the caller.
type Client interface {
	Submit(ctx context.Context, prompt string) (string, error)
	PollOnce(ctx context.Context, handle string) (PollOutcome, error)
}

type client struct {
	log     *logger.Logger
	baseURL string
	apiKey  string
	model   string

	// The upstream generator is slow to acknowledge submissions, so the
	// submit client carries a much longer timeout than the poll client.
	submitClient *http.Client
	pollClient   *http.Client
}

func NewClient(log *logger.Logger, baseURL, apiKey, model string, submitTimeout, pollTimeout time.Duration) Client {
	return &client{
		log:          log.With("component", "SoraClient"),
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		model:        model,
		submitClient: &http.Client{Timeout: submitTimeout},
		pollClient:   &http.Client{Timeout: pollTimeout},
	}
}

func (c *client) post(ctx context.Context, httpClient *http.Client, path string, body any) (*http.Response, []byte, error) {
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

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	return resp, raw, nil
}

// Submit sends the prompt and extracts the upstream job handle from the
// normalized payload's "id" field, falling back to the top-level "id" (the
// upstream nests it inconsistently). An empty body, a body that looks like an
// HTML error page, or a missing handle all count as submission failure.
func (c *client) Submit(ctx context.Context, prompt string) (string, error) {
	resp, raw, err := c.post(ctx, c.submitClient, "/v1/video/sora-video", map[string]any{
		"model":  c.model,
		"prompt": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("video submit request: %w", err)
	}

	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return "", fmt.Errorf("video submit: empty response body (HTTP %d)", resp.StatusCode)
	}
	if bytes.Contains(bytes.ToLower(body), []byte("<html>")) {
		return "", fmt.Errorf("video submit: HTML error page instead of API response (HTTP %d)", resp.StatusCode)
	}

	obj := ParseFrames(body)
	payload := Payload(obj)
	handle := stringField(payload, "id")
	if handle == "" {
		handle = stringField(obj, "id")
	}
	if handle == "" {
		return "", fmt.Errorf("video submit: no job id in response (HTTP %d)", resp.StatusCode)
	}

	c.log.Debug("Video job submitted", "handle", handle)
	return handle, nil
}

// PollOnce queries one handle once. Non-2xx responses are treated as
// transient, not failure. A non-empty results list wins over any concurrent
// status label; unknown status labels are treated optimistically as still in
// progress.
func (c *client) PollOnce(ctx context.Context, handle string) (PollOutcome, error) {
	resp, raw, err := c.post(ctx, c.pollClient, "/v1/draw/result", map[string]any{"id": handle})
	if err != nil {
		return PollOutcome{}, fmt.Errorf("video poll request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PollOutcome{State: PollInProgress, Status: fmt.Sprintf("http_%d", resp.StatusCode)}, nil
	}

	payload := Payload(ParseFrames(raw))

	if results, ok := payload["results"].([]any); ok && len(results) > 0 {
		url := ""
		if first, ok := results[0].(map[string]any); ok {
			url = stringField(first, "url")
		}
		return PollOutcome{State: PollDone, URL: url}, nil
	}

	status := strings.ToLower(strings.TrimSpace(stringField(payload, "status")))
	switch status {
	case "failed", "error":
		return PollOutcome{State: PollFailed, Status: status}, nil
	case "waiting", "processing", "pending", "running", "none", "":
		return PollOutcome{State: PollInProgress, Status: status}, nil
	default:
		return PollOutcome{State: PollInProgress, Status: status}, nil
	}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
