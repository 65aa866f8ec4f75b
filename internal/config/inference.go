package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvInferenceURL              = "RIVELY_INFERENCE_URL"
	EnvInferenceAPIKey           = "RIVELY_INFERENCE_API_KEY"
	EnvInferenceUserID           = "RIVELY_INFERENCE_USER_ID"
	EnvInferenceContextAgentID   = "RIVELY_INFERENCE_CONTEXT_AGENT_ID"
	EnvInferenceContextSessionID = "RIVELY_INFERENCE_CONTEXT_SESSION_ID"
	EnvInferenceRequestTimeout   = "RIVELY_INFERENCE_REQUEST_TIMEOUT"
	EnvInferenceAgentTimeout     = "RIVELY_INFERENCE_AGENT_TIMEOUT"
	EnvInferenceRateLimit        = "RIVELY_INFERENCE_RATE_LIMIT"
	EnvInferenceRateBurst        = "RIVELY_INFERENCE_RATE_BURST"
)

// InferenceConfig holds the hosted agent endpoint used for customer context
// extraction and the specialized agents.
type InferenceConfig struct {
	URL              string  `toml:"url"`
	APIKey           string  `toml:"api_key"`
	UserID           string  `toml:"user_id"`
	ContextAgentID   string  `toml:"context_agent_id"`
	ContextSessionID string  `toml:"context_session_id"`
	RequestTimeout   string  `toml:"request_timeout"`
	AgentTimeout     string  `toml:"agent_timeout"`
	RateLimit        float64 `toml:"rate_limit"`
	RateBurst        int     `toml:"rate_burst"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
// Zero leaves hosted agent calls on the transport's own deadlines.
func (c *InferenceConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// AgentTimeoutDuration returns AgentTimeout as a time.Duration.
func (c *InferenceConfig) AgentTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AgentTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *InferenceConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *InferenceConfig) Merge(overlay *InferenceConfig) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.UserID != "" {
		c.UserID = overlay.UserID
	}
	if overlay.ContextAgentID != "" {
		c.ContextAgentID = overlay.ContextAgentID
	}
	if overlay.ContextSessionID != "" {
		c.ContextSessionID = overlay.ContextSessionID
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.AgentTimeout != "" {
		c.AgentTimeout = overlay.AgentTimeout
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst != 0 {
		c.RateBurst = overlay.RateBurst
	}
}

func (c *InferenceConfig) loadDefaults() {
	if c.URL == "" {
		c.URL = "https://agent-prod.studio.lyzr.ai/v3/inference/chat/"
	}
	if c.ContextAgentID == "" {
		c.ContextAgentID = "6884518f1da3452f3d04668c"
	}
	if c.ContextSessionID == "" {
		c.ContextSessionID = "6884518f1da3452f3d04668c-1heboh2q31uh"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "0"
	}
	if c.AgentTimeout == "" {
		c.AgentTimeout = "30s"
	}
	if c.RateBurst == 0 {
		c.RateBurst = 1
	}
}

func (c *InferenceConfig) loadEnv() {
	if v := os.Getenv(EnvInferenceURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvInferenceAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvInferenceUserID); v != "" {
		c.UserID = v
	}
	if v := os.Getenv(EnvInferenceContextAgentID); v != "" {
		c.ContextAgentID = v
	}
	if v := os.Getenv(EnvInferenceContextSessionID); v != "" {
		c.ContextSessionID = v
	}
	if v := os.Getenv(EnvInferenceRequestTimeout); v != "" {
		c.RequestTimeout = v
	}
	if v := os.Getenv(EnvInferenceAgentTimeout); v != "" {
		c.AgentTimeout = v
	}
	if v := os.Getenv(EnvInferenceRateLimit); v != "" {
		if limit, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = limit
		}
	}
	if v := os.Getenv(EnvInferenceRateBurst); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			c.RateBurst = burst
		}
	}
}

func (c *InferenceConfig) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url required")
	}
	if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d < 0 {
		return fmt.Errorf("invalid request_timeout: %s", c.RequestTimeout)
	}
	if d, err := time.ParseDuration(c.AgentTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid agent_timeout: %s", c.AgentTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1")
	}
	return nil
}
