package api

import (
	"net/http"

	"github.com/JaimeStill/rively/internal/config"
	"github.com/JaimeStill/rively/internal/inference"
	"github.com/JaimeStill/rively/internal/infrastructure"
	"github.com/JaimeStill/rively/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// shared inference client.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Inference  inference.Client
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	hc := &http.Client{Timeout: cfg.Inference.RequestTimeoutDuration()}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Cache:     infra.Cache,
			Storage:   infra.Storage,
			Audit:     infra.Audit,
			Metrics:   infra.Metrics,
			Registry:  infra.Registry,
		},
		Pagination: cfg.API.Pagination,
		Inference:  inference.New(&cfg.Inference, hc, logger),
	}
}
