package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/rively/internal/infrastructure"
	"github.com/JaimeStill/rively/internal/metrics"
	"github.com/JaimeStill/rively/pkg/database"
	"github.com/JaimeStill/rively/pkg/lifecycle"
)

func testInfra() *infrastructure.Infrastructure {
	registry := prometheus.NewRegistry()
	return &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Metrics:   metrics.New(registry),
		Registry:  registry,
	}
}

func TestBuildRouterOps(t *testing.T) {
	infra := testInfra()
	infra.Metrics.Escalations.Inc()
	router := buildRouter(infra)

	tests := []struct {
		name string
		path string
		want int
		body string
	}{
		{"healthz", "/healthz", http.StatusOK, "ok"},
		{"readyz before startup", "/readyz", http.StatusServiceUnavailable, "not ready"},
		{"metrics", "/metrics", http.StatusOK, "rively_pipeline_escalations_total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", tt.path, nil)
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("body = %s, want substring %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestBuildRouterReady(t *testing.T) {
	infra := testInfra()
	infra.Lifecycle.WaitForStartup()
	router := buildRouter(infra)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestBuildRouterSubsystemNotReady(t *testing.T) {
	cfg := database.Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "rively",
		User:            "rively",
		SSLMode:         "disable",
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}
	db, err := database.New(&cfg, slog.Default())
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Connection().Close()

	infra := testInfra()
	infra.Database = db
	infra.Lifecycle.WaitForStartup()
	router := buildRouter(infra)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "database") {
		t.Errorf("body = %s, want database named", rec.Body.String())
	}
}
