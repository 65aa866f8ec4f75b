// Package agents invokes the specialized follow-up agents of the closed catalogue.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/JaimeStill/rively/internal/inference"
	"github.com/JaimeStill/rively/internal/metrics"
)

// AgentTimeout bounds a single agent call unless overridden by configuration.
const AgentTimeout = 30 * time.Second

const noResponse = "No response received from agent"

// Result is the outcome of one agent call. Err is empty on success.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"agent_output"`
	Err     string `json:"error,omitempty"`
}

// Invoker calls catalogue agents by name.
type Invoker interface {
	// Invoke returns ErrUnknownAgent for names outside the catalogue. Every
	// other failure is reported in the Result.
	Invoke(ctx context.Context, name, message string) (Result, error)
	Catalogue() Catalogue
}

type invoker struct {
	client    inference.Client
	catalogue Catalogue
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates an Invoker. A non-positive timeout selects AgentTimeout.
func New(
	client inference.Client,
	catalogue Catalogue,
	timeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) Invoker {
	if timeout <= 0 {
		timeout = AgentTimeout
	}
	return &invoker{
		client:    client,
		catalogue: catalogue,
		timeout:   timeout,
		metrics:   m,
		logger:    logger.With("system", "agents"),
	}
}

func (i *invoker) Catalogue() Catalogue {
	return i.catalogue
}

func (i *invoker) Invoke(ctx context.Context, name, message string) (Result, error) {
	agent, ok := i.catalogue.Lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownAgent, name, i.catalogue.Names())
	}

	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	reply, err := i.client.Chat(callCtx, agent.Identity, message)
	result := i.result(name, reply, err, errors.Is(callCtx.Err(), context.DeadlineExceeded))

	i.metrics.AgentInvocations.
		WithLabelValues(name, strconv.FormatBool(result.Success)).
		Observe(time.Since(start).Seconds())

	i.logger.InfoContext(
		ctx, "agent invoked",
		"agent", name,
		"success", result.Success,
		"duration", time.Since(start),
	)

	return result, nil
}

func (i *invoker) result(name string, reply map[string]any, err error, expired bool) Result {
	switch {
	case err == nil:
		output := noResponse
		if v, ok := reply["response"]; ok && v != nil {
			output = fmt.Sprint(v)
		}
		return Result{Success: true, Output: output}
	case expired || errors.Is(err, context.DeadlineExceeded):
		return Result{
			Output: fmt.Sprintf("Agent API call timed out after %s", i.timeout),
			Err:    "timeout",
		}
	default:
		return Result{
			Output: fmt.Sprintf("Failed to get response from %s: %s", name, err),
			Err:    err.Error(),
		}
	}
}

// Compose joins the dispatch-provided agent input with the raw update text.
func Compose(agentInput, text string) string {
	switch {
	case agentInput != "" && text != "":
		return agentInput + "\n\nRaw data/update:\n" + text
	case text != "":
		return "Raw data/update:\n" + text
	default:
		return agentInput
	}
}
