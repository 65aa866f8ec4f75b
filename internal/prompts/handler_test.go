package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/rively/internal/prompts"
	"github.com/JaimeStill/rively/pkg/pagination"
)

type mockSystem struct {
	listFn         func(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error)
	findFn         func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	instructionsFn func(ctx context.Context, stage prompts.Stage) (string, error)
	createFn       func(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error)
	updateFn       func(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	activateFn     func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	deactivateFn   func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
}

func (m *mockSystem) Handler() *prompts.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Instructions(ctx context.Context, stage prompts.Stage) (string, error) {
	return m.instructionsFn(ctx, stage)
}

func (m *mockSystem) Spec(_ context.Context, stage prompts.Stage) (string, error) {
	return prompts.Spec(stage)
}

func (m *mockSystem) Create(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Activate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.activateFn(ctx, id)
}

func (m *mockSystem) Deactivate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.deactivateFn(ctx, id)
}

func newTestHandler(sys prompts.System) *prompts.Handler {
	return prompts.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *prompts.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:           uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Name:         "terse-dispatch",
		Stage:        prompts.StageDispatch,
		Instructions: "Pick an agent for {{.Company}}.",
		Description:  ptr("Shorter dispatch instructions"),
		Active:       false,
	}
}

func TestHandlerList(t *testing.T) {
	p := samplePrompt()
	var captured prompts.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
			captured = f
			result := pagination.NewPageResult([]prompts.Prompt{p}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/prompts?stage=dispatch&name=terse", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[prompts.Prompt]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || len(result.Data) != 1 || result.Data[0].ID != p.ID {
		t.Errorf("result = %+v", result)
	}
	if captured.Stage == nil || *captured.Stage != prompts.StageDispatch {
		t.Errorf("stage filter = %v, want dispatch", captured.Stage)
	}
}

func TestHandlerStages(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/stages", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stages []prompts.Stage
	if err := json.NewDecoder(rec.Body).Decode(&stages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stages) != 3 {
		t.Errorf("stages = %v, want 3 entries", stages)
	}
}

func TestHandlerFind(t *testing.T) {
	p := samplePrompt()

	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"found", "/prompts/" + p.ID.String(), nil, http.StatusOK},
		{"invalid uuid", "/prompts/not-a-uuid", nil, http.StatusBadRequest},
		{"not found", "/prompts/" + uuid.New().String(), prompts.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				findFn: func(_ context.Context, _ uuid.UUID) (*prompts.Prompt, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &p, nil
				},
			}
			mux := setupMux(newTestHandler(sys))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerInstructions(t *testing.T) {
	sys := &mockSystem{
		instructionsFn: func(_ context.Context, stage prompts.Stage) (string, error) {
			return "instructions for " + string(stage), nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("returns stage content", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/synthesize/instructions", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got prompts.StageContent
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Stage != prompts.StageSynthesize || got.Content != "instructions for synthesize" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("invalid stage returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/enhance/instructions", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerSpec(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/dispatch/spec", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got prompts.StageContent
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want, _ := prompts.Spec(prompts.StageDispatch)
	if got.Content != want {
		t.Errorf("content = %q, want dispatch spec", got.Content)
	}
}

func TestHandlerRender(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		body         string
		instructions string
		want         int
		contains     string
	}{
		{
			"classify with default instructions",
			"/prompts/classify/render",
			`{"Text": "Acme opened a Berlin office", "SourceType": "news", "CompanyType": "customer", "Company": "Acme"}`,
			"",
			http.StatusOK,
			"Acme opened a Berlin office",
		},
		{
			"override is rendered",
			"/prompts/synthesize/render",
			`{"Company": "Acme", "AgentName": "Content Marketing Agent"}`,
			"Write for {{.Company}} using {{.AgentName}}.",
			http.StatusOK,
			"Write for Acme using Content Marketing Agent.",
		},
		{
			"override that does not parse",
			"/prompts/dispatch/render",
			`{"Company": "Acme"}`,
			"{{.Company",
			http.StatusBadRequest,
			"",
		},
		{"invalid stage", "/prompts/enhance/render", `{}`, "", http.StatusBadRequest, ""},
		{"invalid json", "/prompts/classify/render", `{`, "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				instructionsFn: func(_ context.Context, stage prompts.Stage) (string, error) {
					if tt.instructions != "" {
						return tt.instructions, nil
					}
					return prompts.Instructions(stage)
				},
			}
			mux := setupMux(newTestHandler(sys))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", tt.path, bytes.NewBufferString(tt.body)))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.contains == "" {
				return
			}

			var got prompts.StageContent
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(got.Content, tt.contains) {
				t.Errorf("content = %q, want substring %q", got.Content, tt.contains)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{
			"created",
			`{"name":"terse-dispatch","stage":"dispatch","instructions":"Pick an agent for {{.Company}}."}`,
			nil,
			http.StatusCreated,
		},
		{"invalid stage", `{"name":"x","stage":"enhance","instructions":"y"}`, nil, http.StatusBadRequest},
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{
			"invalid template",
			`{"name":"x","stage":"classify","instructions":"{{.Text"}`,
			prompts.ErrInvalidTemplate,
			http.StatusBadRequest,
		},
		{
			"duplicate",
			`{"name":"x","stage":"classify","instructions":"y"}`,
			prompts.ErrDuplicate,
			http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				createFn: func(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					p := samplePrompt()
					p.Name = cmd.Name
					return &p, nil
				},
			}
			mux := setupMux(newTestHandler(sys))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/prompts", bytes.NewBufferString(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerUpdate(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		updateFn: func(_ context.Context, id uuid.UUID, cmd prompts.UpdateCommand) (*prompts.Prompt, error) {
			if id != p.ID {
				return nil, prompts.ErrNotFound
			}
			updated := p
			updated.Instructions = cmd.Instructions
			return &updated, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	body := `{"name":"terse-dispatch","stage":"dispatch","instructions":"Updated {{.Title}}"}`

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/prompts/"+p.ID.String(), bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got prompts.Prompt
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Instructions != "Updated {{.Title}}" {
		t.Errorf("instructions = %q", got.Instructions)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/prompts/"+uuid.New().String(), bytes.NewBufferString(body)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d, want 404", rec.Code)
	}
}

func TestHandlerDelete(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != p.ID {
				return prompts.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/prompts/"+p.ID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/prompts/"+uuid.New().String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerActivation(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		activateFn: func(_ context.Context, _ uuid.UUID) (*prompts.Prompt, error) {
			active := p
			active.Active = true
			return &active, nil
		},
		deactivateFn: func(_ context.Context, _ uuid.UUID) (*prompts.Prompt, error) {
			return &p, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		path   string
		active bool
	}{
		{"/prompts/" + p.ID.String() + "/activate", true},
		{"/prompts/" + p.ID.String() + "/deactivate", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var got prompts.Prompt
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Active != tt.active {
				t.Errorf("active = %v, want %v", got.Active, tt.active)
			}
		})
	}
}

func TestHandlerRoutes(t *testing.T) {
	group := newTestHandler(&mockSystem{}).Routes()

	if group.Prefix != "/prompts" {
		t.Errorf("prefix = %q, want /prompts", group.Prefix)
	}
	if len(group.Routes) != 12 {
		t.Errorf("routes = %d, want 12", len(group.Routes))
	}
}
