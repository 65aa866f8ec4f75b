package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/rively/internal/api"
	"github.com/JaimeStill/rively/internal/audit"
	"github.com/JaimeStill/rively/internal/config"
	"github.com/JaimeStill/rively/internal/infrastructure"
	"github.com/JaimeStill/rively/pkg/cache"
	"github.com/JaimeStill/rively/pkg/database"
	"github.com/JaimeStill/rively/pkg/middleware"
	"github.com/JaimeStill/rively/pkg/pagination"
)

func validConfig(t *testing.T) *config.Config {
	return &config.Config{
		Agent: gaconfig.AgentConfig{
			Name: "test-agent",
			Provider: &gaconfig.ProviderConfig{
				Name:    "ollama",
				BaseURL: "http://localhost:11434",
				Options: make(map[string]any),
			},
			Model: &gaconfig.ModelConfig{
				Name: "llama3.1:8b",
			},
		},
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "rively",
			User:            "rively",
			Password:        "rively",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Cache: cache.Config{
			Addr:        "localhost:6379",
			KeyPrefix:   "rively",
			DialTimeout: "5s",
		},
		Inference: config.InferenceConfig{
			URL:            "http://localhost:9000/v3/inference/chat/",
			RequestTimeout: "60s",
			AgentTimeout:   "30s",
		},
		Audit: config.AuditConfig{
			Sink:      config.AuditSinkFile,
			Directory: t.TempDir(),
			QueueSize: 16,
		},
		Pipeline: config.PipelineConfig{
			MaxConcurrency: 4,
		},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
		API: config.APIConfig{
			BasePath:    "/api",
			MaxBodySize: "1MB",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Cache == nil {
		t.Error("runtime cache is nil")
	}
	if runtime.Audit == nil {
		t.Error("runtime audit is nil")
	}
	if runtime.Inference == nil {
		t.Error("runtime inference client is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)
	runtime := api.NewRuntime(cfg, infra)

	domain, err := api.NewDomain(cfg, runtime)
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}
	if domain.Prompts == nil || domain.Updates == nil {
		t.Fatal("NewDomain() returned nil systems")
	}
	if domain.Pipeline == nil || domain.Pipeline.Invoker == nil || domain.Pipeline.Contexts == nil {
		t.Fatal("pipeline runtime not assembled")
	}
	if got := len(domain.Pipeline.Invoker.Catalogue().Agents()); got != 2 {
		t.Errorf("catalogue size = %d, want 2", got)
	}
}

func TestModuleRoutes(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	entry := []byte(`{"log_type":"audit","customer_id":"cust-1"}` + "\n")
	if err := infra.Audit.Sink().Append(context.Background(), audit.TargetThreshold, entry); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	tests := []struct {
		name string
		path string
		want int
		body string
	}{
		{"prompt stages", "/api/prompts/stages", http.StatusOK, "classify"},
		{"audit trail", "/api/audit/threshold", http.StatusOK, "cust-1"},
		{"missing audit trail", "/api/audit/agent_output", http.StatusNotFound, ""},
		{"invalid update id", "/api/updates/not-a-uuid", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			m.Serve(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			body, _ := io.ReadAll(rec.Body)
			if tt.body != "" && !strings.Contains(string(body), tt.body) {
				t.Errorf("body = %s, want substring %q", body, tt.body)
			}
		})
	}
}
