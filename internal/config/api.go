package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/rively/pkg/formatting"
	"github.com/JaimeStill/rively/pkg/middleware"
	"github.com/JaimeStill/rively/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "RIVELY_CORS_ENABLED",
	Origins:          "RIVELY_CORS_ORIGINS",
	AllowedMethods:   "RIVELY_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "RIVELY_CORS_ALLOWED_HEADERS",
	AllowCredentials: "RIVELY_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "RIVELY_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "RIVELY_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "RIVELY_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 1024 * 1024 // 1MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("RIVELY_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("RIVELY_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
