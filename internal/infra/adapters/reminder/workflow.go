package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subscription-tracker/internal/domain/ports/adapter"
)

var _ adapter.ReminderScheduler = (*WorkflowClient)(nil)

// WorkflowClient triggers a hosted durable workflow (QStash-compatible API).
// The workflow service calls CallbackURL back with the JSON body it was given.
type WorkflowClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewWorkflowClient(baseURL, token string, timeout time.Duration) (*WorkflowClient, error) {
	if token == "" {
		return nil, errors.New("workflow token empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid workflow url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WorkflowClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (w *WorkflowClient) Name() string { return "workflow" }

// Trigger makes exactly one POST to /v2/trigger/<callback>. Forwarded headers
// reach the callback unchanged.
func (w *WorkflowClient) Trigger(ctx context.Context, t adapter.ReminderTrigger) (string, error) {
	if t.CallbackURL == "" || t.SubscriptionID == "" {
		return "", errors.New("workflow trigger: callback url and subscription id are required")
	}
	b, err := json.Marshal(map[string]string{"subscriptionId": t.SubscriptionID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v2/trigger/"+t.CallbackURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+w.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Retries", strconv.Itoa(t.Retries))
	for k, v := range t.Headers {
		req.Header.Set("Upstash-Forward-"+k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("workflow trigger: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out struct {
		WorkflowRunID string `json:"workflowRunId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("workflow trigger: decode response: %w", err)
	}
	if out.WorkflowRunID == "" {
		return "", errors.New("workflow trigger: empty workflowRunId")
	}
	return out.WorkflowRunID, nil
}
