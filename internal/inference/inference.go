// Package inference calls the hosted agent endpoint that serves customer
// context extraction and the specialized follow-up agents.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/rively/internal/config"
)

// Identity addresses one hosted agent session.
type Identity struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
}

// Client sends a message to a hosted agent and returns the decoded reply body.
type Client interface {
	Chat(ctx context.Context, id Identity, message string) (map[string]any, error)
}

type request struct {
	UserID    string `json:"user_id"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type client struct {
	http    *http.Client
	url     string
	apiKey  string
	userID  string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client. A RateLimit of zero disables throttling.
func New(cfg *config.InferenceConfig, hc *http.Client, logger *slog.Logger) Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeoutDuration()}
	}

	limiter := rate.NewLimiter(rate.Inf, cfg.RateBurst)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	return &client{
		http:    hc,
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		userID:  cfg.UserID,
		limiter: limiter,
		logger:  logger.With("system", "inference"),
	}
}

func (c *client) Chat(ctx context.Context, id Identity, message string) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(request{
		UserID:    c.userID,
		AgentID:   id.AgentID,
		SessionID: id.SessionID,
		Message:   message,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post inference: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "inference response", "agent_id", id.AgentID, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, bytes.TrimSpace(snippet))
	}

	var reply map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return reply, nil
}
