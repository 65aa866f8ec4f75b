package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/rively/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "rively"
user = "rively"
password = "rively"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[cache]
addr = "localhost:6379"
key_prefix = "rively"

[inference]
url = "http://localhost:9000/v3/inference/chat/"
api_key = "test-key"
user_id = "ops@rively.test"
agent_timeout = "30s"

[audit]
sink = "file"
directory = "logs"

[pipeline]
max_concurrency = 4

[logging]
level = "debug"
format = "text"

[api]
base_path = "/api"
max_body_size = "1MB"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[pipeline]
max_concurrency = 8
`

// minimalConfig provides the minimum fields required for validation to pass.
const minimalConfig = `
[database]
name = "rively"
user = "rively"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func loadFrom(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Cache.Addr != "localhost:6379" {
		t.Errorf("cache addr: got %s", cfg.Cache.Addr)
	}
	if cfg.Inference.APIKey != "test-key" {
		t.Errorf("inference api_key: got %s", cfg.Inference.APIKey)
	}
	if cfg.Audit.Sink != config.AuditSinkFile {
		t.Errorf("audit sink: got %s, want file", cfg.Audit.Sink)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("RIVELY_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Pipeline.MaxConcurrency != 8 {
		t.Errorf("max_concurrency: got %d, want 8 (from overlay)", cfg.Pipeline.MaxConcurrency)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("RIVELY_VERSION", "2.0.0")
	t.Setenv("RIVELY_SERVER_PORT", "3000")
	t.Setenv("RIVELY_CACHE_ADDR", "redis:6379")
	t.Setenv("RIVELY_INFERENCE_AGENT_TIMEOUT", "45s")

	cfg := loadFrom(t, baseConfig)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Cache.Addr != "redis:6379" {
		t.Errorf("cache addr: got %s, want redis:6379", cfg.Cache.Addr)
	}
	if d := cfg.Inference.AgentTimeoutDuration(); d != 45*time.Second {
		t.Errorf("agent timeout: got %v, want 45s", d)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("RIVELY_DB_NAME", "testdb")
	t.Setenv("RIVELY_DB_USER", "testuser")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestDefaults(t *testing.T) {
	cfg := loadFrom(t, minimalConfig)

	if cfg.Pipeline.MaxConcurrency != 4 {
		t.Errorf("max_concurrency: got %d, want 4", cfg.Pipeline.MaxConcurrency)
	}
	if d := cfg.Inference.AgentTimeoutDuration(); d != 30*time.Second {
		t.Errorf("agent_timeout: got %v, want 30s", d)
	}
	if d := cfg.Inference.RequestTimeoutDuration(); d != 0 {
		t.Errorf("request_timeout: got %v, want 0 (no deadline)", d)
	}
	if cfg.Inference.RateLimit != 0 {
		t.Errorf("rate_limit: got %v, want 0 (disabled)", cfg.Inference.RateLimit)
	}
	if cfg.Audit.Sink != config.AuditSinkFile {
		t.Errorf("audit sink: got %s, want file", cfg.Audit.Sink)
	}
	if cfg.Audit.QueueSize != 1024 {
		t.Errorf("audit queue_size: got %d, want 1024", cfg.Audit.QueueSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging: got %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Cache.KeyPrefix != "rively" {
		t.Errorf("cache key_prefix: got %s, want rively", cfg.Cache.KeyPrefix)
	}
	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if got := cfg.API.MaxBodySizeBytes(); got != 1024*1024 {
		t.Errorf("MaxBodySizeBytes() = %d, want 1MB", got)
	}
}

func TestEnv(t *testing.T) {
	cfg := loadFrom(t, baseConfig)
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}

	t.Setenv("RIVELY_ENV", "production")
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestMaxBodySizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 1MB", "1MB", 1024 * 1024},
		{"valid 512KB", "512KB", 512 * 1024},
		{"invalid falls back to 1MB", "bad", 1024 * 1024},
		{"empty falls back to 1MB", "", 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxBodySize: tt.size}
			if got := cfg.MaxBodySizeBytes(); got != tt.want {
				t.Errorf("MaxBodySizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  minimalConfig + "\n[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			config:  minimalConfig + "\n[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "zero write_timeout",
			config:  minimalConfig + "\n[server]\nwrite_timeout = \"0s\"\n",
			wantErr: "invalid write_timeout",
		},
		{
			name:    "negative request_timeout",
			config:  minimalConfig + "\n[inference]\nrequest_timeout = \"-1s\"\n",
			wantErr: "invalid request_timeout",
		},
		{
			name:    "invalid audit sink",
			config:  minimalConfig + "\n[audit]\nsink = \"s3\"\n",
			wantErr: "invalid sink",
		},
		{
			name:    "blob sink requires storage",
			config:  minimalConfig + "\n[audit]\nsink = \"blob\"\n",
			wantErr: "connection_string or account_url required",
		},
		{
			name:    "zero agent timeout",
			config:  minimalConfig + "\n[inference]\nagent_timeout = \"0s\"\n",
			wantErr: "invalid agent_timeout",
		},
		{
			name:    "negative rate limit",
			config:  minimalConfig + "\n[inference]\nrate_limit = -1.0\n",
			wantErr: "rate_limit",
		},
		{
			name:    "negative concurrency",
			config:  minimalConfig + "\n[pipeline]\nmax_concurrency = -2\n",
			wantErr: "max_concurrency",
		},
		{
			name:    "invalid logging format",
			config:  minimalConfig + "\n[logging]\nformat = \"xml\"\n",
			wantErr: "invalid format",
		},
		{
			name:    "invalid max body size",
			config:  minimalConfig + "\n[api]\nmax_body_size = \"lots\"\n",
			wantErr: "invalid max_body_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBlobSinkStorage(t *testing.T) {
	t.Setenv("RIVELY_STORAGE_ACCOUNT_URL", "https://rively.blob.core.windows.net/")

	cfg := loadFrom(t, minimalConfig+"\n[audit]\nsink = \"blob\"\n")

	if cfg.Storage.ContainerName != "audit" {
		t.Errorf("container: got %s, want audit", cfg.Storage.ContainerName)
	}
	if cfg.Storage.AccountURL != "https://rively.blob.core.windows.net/" {
		t.Errorf("account_url: got %s", cfg.Storage.AccountURL)
	}
}

func TestAgentDefaults(t *testing.T) {
	cfg := loadFrom(t, minimalConfig)

	if cfg.Agent.Name != "default-agent" {
		t.Errorf("agent name: got %s, want default-agent", cfg.Agent.Name)
	}
	if cfg.Agent.Provider == nil {
		t.Fatal("agent provider is nil")
	}
	if cfg.Agent.Provider.Name != "ollama" {
		t.Errorf("provider name: got %s, want ollama", cfg.Agent.Provider.Name)
	}
}

func TestAgentEnvOverrides(t *testing.T) {
	t.Setenv("RIVELY_AGENT_PROVIDER_NAME", "azure")
	t.Setenv("RIVELY_AGENT_BASE_URL", "https://rively.openai.azure.com")
	t.Setenv("RIVELY_AGENT_MODEL_NAME", "gpt-4o-mini")
	t.Setenv("RIVELY_AGENT_TOKEN", "test-token")
	t.Setenv("RIVELY_AGENT_DEPLOYMENT", "gpt-4o-mini")

	cfg := loadFrom(t, baseConfig)

	if cfg.Agent.Provider.Name != "azure" {
		t.Errorf("provider name: got %s, want azure", cfg.Agent.Provider.Name)
	}
	if cfg.Agent.Provider.BaseURL != "https://rively.openai.azure.com" {
		t.Errorf("provider base_url: got %s", cfg.Agent.Provider.BaseURL)
	}
	if cfg.Agent.Model.Name != "gpt-4o-mini" {
		t.Errorf("model name: got %s, want gpt-4o-mini", cfg.Agent.Model.Name)
	}

	opts := cfg.Agent.Provider.Options
	if opts["token"] != "test-token" {
		t.Errorf("token: got %v, want test-token", opts["token"])
	}
	if opts["deployment"] != "gpt-4o-mini" {
		t.Errorf("deployment: got %v, want gpt-4o-mini", opts["deployment"])
	}
}

func TestLoggingNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		wantJSON bool
		wantDbg  bool
	}{
		{"json info", config.LoggingConfig{Level: "info", Format: "json"}, true, false},
		{"text debug", config.LoggingConfig{Level: "debug", Format: "text"}, false, true},
		{"unknown level falls back to info", config.LoggingConfig{Level: "chatty", Format: "json"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := tt.cfg.NewLogger(&buf)

			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDbg {
				t.Errorf("debug emitted: got %v, want %v", got, tt.wantDbg)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("json output: got %v, want %v (%q)", got, tt.wantJSON, out)
			}
		})
	}

	if lvl := (&config.LoggingConfig{Level: "warn"}).SlogLevel(); lvl != slog.LevelWarn {
		t.Errorf("SlogLevel() = %v, want WARN", lvl)
	}
}

func TestPipelineFinalize(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		env     string
		want    int
		wantErr bool
	}{
		{"default", 0, "", 4, false},
		{"explicit", 2, "", 2, false},
		{"env override", 2, "9", 9, false},
		{"env unparsable ignored", 2, "many", 2, false},
		{"negative rejected", -1, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvPipelineMaxConcurrency, tt.env)

			cfg := &config.PipelineConfig{MaxConcurrency: tt.value}
			err := cfg.Finalize()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}
			if cfg.MaxConcurrency != tt.want {
				t.Errorf("max_concurrency: got %d, want %d", cfg.MaxConcurrency, tt.want)
			}
		})
	}
}
