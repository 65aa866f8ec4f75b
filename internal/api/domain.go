package api

import (
	"fmt"

	"github.com/JaimeStill/rively/internal/agents"
	"github.com/JaimeStill/rively/internal/config"
	"github.com/JaimeStill/rively/internal/contexts"
	"github.com/JaimeStill/rively/internal/customers"
	"github.com/JaimeStill/rively/internal/inference"
	"github.com/JaimeStill/rively/internal/pipeline"
	"github.com/JaimeStill/rively/internal/prompts"
	"github.com/JaimeStill/rively/internal/updates"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Prompts  prompts.System
	Updates  updates.System
	Pipeline *pipeline.Runtime
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	store := customers.NewCached(
		customers.New(db, runtime.Logger),
		runtime.Cache,
		runtime.Logger,
	)

	extractor := contexts.NewExtractor(
		runtime.Inference,
		inference.Identity{
			AgentID:   cfg.Inference.ContextAgentID,
			SessionID: cfg.Inference.ContextSessionID,
		},
		runtime.Logger,
	)

	model, err := pipeline.NewModel(&cfg.Agent)
	if err != nil {
		return nil, fmt.Errorf("pipeline model: %w", err)
	}

	adapter := contexts.NewAdapter(
		store,
		extractor,
		runtime.Audit,
		runtime.Metrics,
		runtime.Logger,
	)

	invoker := agents.New(
		runtime.Inference,
		agents.DefaultCatalogue(),
		cfg.Inference.AgentTimeoutDuration(),
		runtime.Metrics,
		runtime.Logger,
	)

	rt := &pipeline.Runtime{
		Model:    model,
		Prompts:  promptsSystem,
		Contexts: adapter,
		Invoker:  invoker,
		Recorder: runtime.Audit,
		Metrics:  runtime.Metrics,
		Logger:   runtime.Logger.With("workflow", "pipeline"),
	}

	updatesSystem := updates.New(
		db,
		rt,
		cfg.Pipeline.MaxConcurrency,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Prompts:  promptsSystem,
		Updates:  updatesSystem,
		Pipeline: rt,
	}, nil
}
