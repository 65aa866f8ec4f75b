// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, cache, audit, metrics) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/rively/internal/audit"
	"github.com/JaimeStill/rively/internal/config"
	"github.com/JaimeStill/rively/internal/metrics"
	"github.com/JaimeStill/rively/pkg/cache"
	"github.com/JaimeStill/rively/pkg/database"
	"github.com/JaimeStill/rively/pkg/lifecycle"
	"github.com/JaimeStill/rively/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Storage is nil unless the audit trail is written to blob storage.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Cache     cache.System
	Storage   storage.System
	Audit     *audit.Logger
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := cfg.Logging.NewLogger(os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	var store storage.System
	var sink audit.Sink

	switch cfg.Audit.Sink {
	case config.AuditSinkBlob:
		store, err = storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		sink = audit.NewBlobSink(store, cfg.Audit.Prefix)
	default:
		sink = audit.NewFileSink(cfg.Audit.Directory)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Cache:     cache.New(&cfg.Cache, logger),
		Storage:   store,
		Audit:     audit.New(sink, cfg.Audit.QueueSize, m, logger),
		Metrics:   m,
		Registry:  registry,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if err := i.Audit.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("audit start failed: %w", err)
	}
	return nil
}

// Check returns an error naming the first subsystem that has not completed
// its startup ping. Unset subsystems are skipped.
func (i *Infrastructure) Check() error {
	if i.Database != nil {
		if err := i.Database.Check(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if i.Cache != nil {
		if err := i.Cache.Check(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}
