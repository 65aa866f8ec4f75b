package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/rively/pkg/formatting"
)

// Model is the language model each stage prompts.
type Model interface {
	Chat(ctx context.Context, prompt string) (formatting.Reply, error)
}

type agentModel struct {
	agent agent.Agent
}

// NewModel creates a Model backed by a go-agents agent built from cfg.
func NewModel(cfg *gaconfig.AgentConfig) (Model, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &agentModel{agent: a}, nil
}

func (m *agentModel) Chat(ctx context.Context, prompt string) (formatting.Reply, error) {
	resp, err := m.agent.Chat(ctx, prompt)
	if err != nil {
		return formatting.Reply{}, err
	}
	return formatting.TextReply(resp.Content()), nil
}
