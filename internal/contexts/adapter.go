package contexts

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/JaimeStill/rively/internal/audit"
	"github.com/JaimeStill/rively/internal/customers"
	"github.com/JaimeStill/rively/internal/metrics"
)

const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)

// Adapter resolves the customer context for a pipeline run.
type Adapter interface {
	// Get returns the stored context, or extracts and stores one on a miss.
	// It never fails: a store or extraction error yields a nil Context.
	Get(ctx context.Context, customerID string) Context
}

type adapter struct {
	store     customers.Store
	extractor Extractor
	recorder  audit.Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAdapter creates an Adapter over store and extractor. Every resolution is
// recorded to context/<customer_id>.
func NewAdapter(
	store customers.Store,
	extractor Extractor,
	recorder audit.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) Adapter {
	return &adapter{
		store:     store,
		extractor: extractor,
		recorder:  recorder,
		metrics:   m,
		logger:    logger.With("system", "contexts"),
	}
}

func (a *adapter) Get(ctx context.Context, customerID string) Context {
	serialized, found, err := a.store.Context(ctx, customerID)
	if err != nil {
		return a.fail(ctx, customerID, "load", err)
	}

	if found {
		a.metrics.ContextLookups.WithLabelValues(lookupHit).Inc()
		c := decodeStored(serialized)
		a.record(ctx, customerID, domainOrUnknown(""), c)
		return c
	}

	a.metrics.ContextLookups.WithLabelValues(lookupMiss).Inc()

	domain, err := a.store.Domain(ctx, customerID)
	if err != nil {
		return a.fail(ctx, customerID, "domain", err)
	}

	c, err := a.extractor.Extract(ctx, domain)
	if err != nil {
		a.logger.WarnContext(ctx, "context extraction failed",
			"customer_id", customerID,
			"domain", domain,
			"error", err,
		)
		a.recorder.Record(ctx, audit.ContextTarget(customerID), map[string]any{
			"customer_id": customerID,
			"domain":      domainOrUnknown(domain),
			"context": map[string]any{
				"error":  "Context extraction failed",
				"domain": domain,
			},
		})
		return nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return a.fail(ctx, customerID, "encode", err)
	}

	if err := a.store.SaveContext(ctx, customerID, string(data)); err != nil {
		return a.fail(ctx, customerID, "save", err)
	}

	a.logger.InfoContext(ctx, "customer context extracted", "customer_id", customerID, "domain", domain)
	a.record(ctx, customerID, domain, c)
	return c
}

func (a *adapter) fail(ctx context.Context, customerID, op string, err error) Context {
	a.metrics.ContextLookups.WithLabelValues(lookupError).Inc()
	a.logger.ErrorContext(ctx, "context lookup failed",
		"customer_id", customerID,
		"op", op,
		"error", err,
	)
	return nil
}

func (a *adapter) record(ctx context.Context, customerID, domain string, c Context) {
	a.recorder.Record(ctx, audit.ContextTarget(customerID), map[string]any{
		"customer_id": customerID,
		"domain":      domain,
		"context":     c,
	})
}

func decodeStored(serialized string) Context {
	if c, err := Decode([]byte(serialized)); err == nil {
		return c
	}
	return Context{{Key: "raw_context", Value: serialized}}
}

func domainOrUnknown(domain string) string {
	if domain == "" {
		return "unknown"
	}
	return domain
}
