package pipeline

import (
	"log/slog"

	"github.com/JaimeStill/rively/internal/agents"
	"github.com/JaimeStill/rively/internal/audit"
	"github.com/JaimeStill/rively/internal/contexts"
	"github.com/JaimeStill/rively/internal/metrics"
	"github.com/JaimeStill/rively/internal/prompts"
)

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Model    Model
	Prompts  prompts.Source
	Contexts contexts.Adapter
	Invoker  agents.Invoker
	Recorder audit.Recorder
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}
