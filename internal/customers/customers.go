// Package customers stores the per-customer context snapshot and domain.
package customers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/rively/pkg/cache"
	"github.com/JaimeStill/rively/pkg/repository"
)

// Store reads and writes the serialized customer context.
type Store interface {
	// Context returns the stored serialized context. found is false when the
	// customer exists but has no context yet.
	Context(ctx context.Context, customerID string) (serialized string, found bool, err error)
	// SaveContext persists the serialized context. There is no expiry.
	SaveContext(ctx context.Context, customerID, serialized string) error
	// Domain returns the customer's website domain.
	Domain(ctx context.Context, customerID string) (string, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates the Postgres-backed Store over the customers table.
func New(db *sql.DB, logger *slog.Logger) Store {
	return &repo{
		db:     db,
		logger: logger.With("system", "customers"),
	}
}

func (r *repo) Context(ctx context.Context, customerID string) (string, bool, error) {
	q := "SELECT context FROM customers WHERE id = $1"

	serialized, err := repository.QueryOne(ctx, r.db, q, []any{customerID}, scanNullString)
	if err != nil {
		return "", false, repository.MapError(err, ErrNotFound, err)
	}

	return serialized.String, serialized.Valid, nil
}

func (r *repo) SaveContext(ctx context.Context, customerID, serialized string) error {
	q := "UPDATE customers SET context = $2, updated_at = NOW() WHERE id = $1"

	if err := repository.ExecExpectOne(ctx, r.db, q, customerID, serialized); err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.logger.InfoContext(ctx, "customer context saved", "customer_id", customerID)
	return nil
}

func (r *repo) Domain(ctx context.Context, customerID string) (string, error) {
	q := "SELECT domain FROM customers WHERE id = $1"

	domain, err := repository.QueryOne(ctx, r.db, q, []any{customerID}, scanNullString)
	if err != nil {
		return "", repository.MapError(err, ErrNotFound, err)
	}

	return domain.String, nil
}

func scanNullString(s repository.Scanner) (sql.NullString, error) {
	var v sql.NullString
	err := s.Scan(&v)
	return v, err
}

type cached struct {
	inner  Store
	cache  cache.System
	logger *slog.Logger
}

// NewCached layers Redis over inner. Reads go to Redis first and fill it on
// a miss; writes go to inner and then Redis. Keys never expire.
func NewCached(inner Store, c cache.System, logger *slog.Logger) Store {
	return &cached{
		inner:  inner,
		cache:  c,
		logger: logger.With("system", "customers-cache"),
	}
}

func (c *cached) contextKey(customerID string) string {
	return c.cache.Key("customer", customerID, "context")
}

func (c *cached) domainKey(customerID string) string {
	return c.cache.Key("customer", customerID, "domain")
}

func (c *cached) Context(ctx context.Context, customerID string) (string, bool, error) {
	val, err := c.cache.Client().Get(ctx, c.contextKey(customerID)).Result()
	switch {
	case err == nil:
		return val, true, nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "cache read failed", "customer_id", customerID, "error", err)
	}

	serialized, found, err := c.inner.Context(ctx, customerID)
	if err != nil || !found {
		return serialized, found, err
	}

	c.set(ctx, c.contextKey(customerID), serialized)
	return serialized, true, nil
}

func (c *cached) SaveContext(ctx context.Context, customerID, serialized string) error {
	if err := c.inner.SaveContext(ctx, customerID, serialized); err != nil {
		return err
	}
	c.set(ctx, c.contextKey(customerID), serialized)
	return nil
}

func (c *cached) Domain(ctx context.Context, customerID string) (string, error) {
	val, err := c.cache.Client().Get(ctx, c.domainKey(customerID)).Result()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "cache read failed", "customer_id", customerID, "error", err)
	}

	domain, err := c.inner.Domain(ctx, customerID)
	if err != nil {
		return "", err
	}

	c.set(ctx, c.domainKey(customerID), domain)
	return domain, nil
}

func (c *cached) set(ctx context.Context, key, value string) {
	if err := c.cache.Client().Set(ctx, key, value, 0).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
