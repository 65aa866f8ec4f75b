package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvAuditSink      = "RIVELY_AUDIT_SINK"
	EnvAuditDirectory = "RIVELY_AUDIT_DIRECTORY"
	EnvAuditPrefix    = "RIVELY_AUDIT_PREFIX"
	EnvAuditQueueSize = "RIVELY_AUDIT_QUEUE_SIZE"
)

// Audit sink kinds.
const (
	AuditSinkFile = "file"
	AuditSinkBlob = "blob"
)

// AuditConfig selects where audit entries are written.
// Directory applies to the file sink, Prefix to the blob sink.
type AuditConfig struct {
	Sink      string `toml:"sink"`
	Directory string `toml:"directory"`
	Prefix    string `toml:"prefix"`
	QueueSize int    `toml:"queue_size"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AuditConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AuditConfig) Merge(overlay *AuditConfig) {
	if overlay.Sink != "" {
		c.Sink = overlay.Sink
	}
	if overlay.Directory != "" {
		c.Directory = overlay.Directory
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
}

func (c *AuditConfig) loadDefaults() {
	if c.Sink == "" {
		c.Sink = AuditSinkFile
	}
	if c.Directory == "" {
		c.Directory = "logs"
	}
	if c.Prefix == "" {
		c.Prefix = "audit"
	}
	if c.QueueSize == 0 {
		c.QueueSize = 1024
	}
}

func (c *AuditConfig) loadEnv() {
	if v := os.Getenv(EnvAuditSink); v != "" {
		c.Sink = v
	}
	if v := os.Getenv(EnvAuditDirectory); v != "" {
		c.Directory = v
	}
	if v := os.Getenv(EnvAuditPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvAuditQueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueSize = n
		}
	}
}

func (c *AuditConfig) validate() error {
	switch c.Sink {
	case AuditSinkFile, AuditSinkBlob:
	default:
		return fmt.Errorf("invalid sink: %s", c.Sink)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1")
	}
	return nil
}
