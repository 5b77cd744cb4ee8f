// Package responder is the boundary to the external text-generation service.
// The core consumes it as a pure function from (instructions, history, user
// message) to assistant text; any failure means "dialogue unavailable for
// this turn" and is surfaced, never guessed around.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tagdesk/internal/common/logger"
	"tagdesk/internal/models"
)

var (
	ErrResponderFailed  = errors.New("RESPONDER_FAILED")
	ErrResponderTimeout = errors.New("RESPONDER_TIMEOUT")
	ErrNotConfigured    = errors.New("RESPONDER_NOT_CONFIGURED")
)

// Responder generates the assistant turn for a conversation.
type Responder interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// Request carries everything the upstream needs to produce the next turn.
type Request struct {
	Instructions string
	History      []models.Message
	UserText     string
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client calls the GenAI HTTP service.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		// No client-level timeout: the per-call context bounds each attempt.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "responder"}),
	}
}

func (c *Client) Generate(ctx context.Context, req *Request) (string, error) {
	if c.config.BaseURL == "" {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"prompt": buildPrompt(req),
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrResponderTimeout
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrResponderFailed, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, lastErr = c.client.Do(httpReq)

		// Context expiry during the request is a timeout, not a retry case.
		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return "", ErrResponderTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrResponderTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrResponderFailed, lastErr)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrResponderFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrResponderFailed, err)
	}
	if apiResponse.Response == "" {
		return "", fmt.Errorf("%w: empty response", ErrResponderFailed)
	}

	c.logger.Debug("assistant turn generated", map[string]interface{}{
		"historyTurns": len(req.History),
		"responseLen":  len(apiResponse.Response),
	})

	return apiResponse.Response, nil
}

// buildPrompt replays the instructions and full ordered history ahead of the
// new user turn.
func buildPrompt(req *Request) string {
	var b strings.Builder
	b.WriteString(req.Instructions)
	b.WriteString("\n\n")
	for _, msg := range req.History {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}
	b.WriteString(string(models.RoleUser))
	b.WriteString(": ")
	b.WriteString(req.UserText)
	return b.String()
}
