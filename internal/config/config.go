package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/rively/pkg/cache"
	"github.com/JaimeStill/rively/pkg/database"
	"github.com/JaimeStill/rively/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvRivelyEnv             = "RIVELY_ENV"
	EnvRivelyShutdownTimeout = "RIVELY_SHUTDOWN_TIMEOUT"
	EnvRivelyVersion         = "RIVELY_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "RIVELY_DB_HOST",
	Port:            "RIVELY_DB_PORT",
	Name:            "RIVELY_DB_NAME",
	User:            "RIVELY_DB_USER",
	Password:        "RIVELY_DB_PASSWORD",
	SSLMode:         "RIVELY_DB_SSL_MODE",
	MaxOpenConns:    "RIVELY_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "RIVELY_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "RIVELY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "RIVELY_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "RIVELY_STORAGE_CONTAINER_NAME",
	ConnectionString: "RIVELY_STORAGE_CONNECTION_STRING",
	AccountURL:       "RIVELY_STORAGE_ACCOUNT_URL",
}

var cacheEnv = &cache.Env{
	Addr:        "RIVELY_CACHE_ADDR",
	Password:    "RIVELY_CACHE_PASSWORD",
	DB:          "RIVELY_CACHE_DB",
	KeyPrefix:   "RIVELY_CACHE_KEY_PREFIX",
	DialTimeout: "RIVELY_CACHE_DIAL_TIMEOUT",
}

// Config is the root configuration for the Rively service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	Cache           cache.Config         `toml:"cache"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Inference       InferenceConfig      `toml:"inference"`
	Audit           AuditConfig          `toml:"audit"`
	Pipeline        PipelineConfig       `toml:"pipeline"`
	Logging         LoggingConfig        `toml:"logging"`
	API             APIConfig            `toml:"api"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the RIVELY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvRivelyEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Agent.Merge(&overlay.Agent)
	c.Inference.Merge(&overlay.Inference)
	c.Audit.Merge(&overlay.Audit)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Logging.Merge(&overlay.Logging)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Inference.Finalize(); err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	if err := c.Audit.Finalize(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if c.Audit.Sink == AuditSinkBlob {
		if err := c.Storage.Finalize(storageEnv); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvRivelyShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvRivelyVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvRivelyEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
