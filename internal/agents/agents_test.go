package agents_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/rively/internal/agents"
	"github.com/JaimeStill/rively/internal/inference"
	"github.com/JaimeStill/rively/internal/metrics"
)

type fakeClient struct {
	reply  map[string]any
	err    error
	block  bool
	gotID  inference.Identity
	gotMsg string
	calls  int
}

func (f *fakeClient) Chat(ctx context.Context, id inference.Identity, message string) (map[string]any, error) {
	f.calls++
	f.gotID = id
	f.gotMsg = message
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.reply, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newInvoker(c inference.Client, timeout time.Duration) agents.Invoker {
	return agents.New(c, agents.DefaultCatalogue(), timeout, metrics.Nop(), discardLogger())
}

func TestInvokeSuccess(t *testing.T) {
	client := &fakeClient{reply: map[string]any{"response": "Acme, Globex, Initech"}}
	inv := newInvoker(client, 0)

	result, err := inv.Invoke(context.Background(), agents.SimilarClientDiscovery, "acme.com")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if !result.Success || result.Err != "" {
		t.Errorf("result: got %+v, want success", result)
	}
	if result.Output != "Acme, Globex, Initech" {
		t.Errorf("output: got %q", result.Output)
	}
	if client.gotID.AgentID != "686cada6868e419e65c9ec21" {
		t.Errorf("agent id: got %q", client.gotID.AgentID)
	}
	if client.gotMsg != "acme.com" {
		t.Errorf("message: got %q", client.gotMsg)
	}
}

func TestInvokeMissingResponse(t *testing.T) {
	inv := newInvoker(&fakeClient{reply: map[string]any{"status": "ok"}}, 0)

	result, _ := inv.Invoke(context.Background(), agents.ContentMarketing, "post")
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.Output != "No response received from agent" {
		t.Errorf("output: got %q", result.Output)
	}
}

func TestInvokeTimeout(t *testing.T) {
	inv := newInvoker(&fakeClient{block: true}, 20*time.Millisecond)

	result, err := inv.Invoke(context.Background(), agents.ContentMarketing, "post")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if result.Success {
		t.Error("expected failure")
	}
	if result.Err != "timeout" {
		t.Errorf("err: got %q, want timeout", result.Err)
	}
	if result.Output != "Agent API call timed out after 20ms" {
		t.Errorf("output: got %q", result.Output)
	}
}

func TestInvokeDefaultTimeoutMessage(t *testing.T) {
	if agents.AgentTimeout != 30*time.Second {
		t.Fatalf("AgentTimeout: got %v, want 30s", agents.AgentTimeout)
	}
	if got := agents.AgentTimeout.String(); got != "30s" {
		t.Errorf("timeout renders as %q, want 30s", got)
	}
}

func TestInvokeFailure(t *testing.T) {
	inv := newInvoker(&fakeClient{err: errors.New("connection refused")}, 0)

	result, err := inv.Invoke(context.Background(), agents.ContentMarketing, "post")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if result.Success {
		t.Error("expected failure")
	}
	if result.Err != "connection refused" {
		t.Errorf("err: got %q", result.Err)
	}
	want := "Failed to get response from Content Marketing Agent: connection refused"
	if result.Output != want {
		t.Errorf("output: got %q, want %q", result.Output, want)
	}
}

func TestInvokeUnknownAgent(t *testing.T) {
	client := &fakeClient{}
	inv := newInvoker(client, 0)

	_, err := inv.Invoke(context.Background(), "Lead Scoring Agent", "x")
	if !errors.Is(err, agents.ErrUnknownAgent) {
		t.Fatalf("error = %v, want ErrUnknownAgent", err)
	}
	if client.calls != 0 {
		t.Errorf("client called %d times for unknown agent", client.calls)
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name  string
		input string
		text  string
		want  string
	}{
		{"both", "acme.com", "Acme signed Globex", "acme.com\n\nRaw data/update:\nAcme signed Globex"},
		{"text only", "", "Acme signed Globex", "Raw data/update:\nAcme signed Globex"},
		{"input only", "acme.com", "", "acme.com"},
		{"neither", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agents.Compose(tt.input, tt.text); got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalogue(t *testing.T) {
	c := agents.DefaultCatalogue()

	names := c.Names()
	if len(names) != 2 {
		t.Fatalf("names: got %d, want 2", len(names))
	}
	if names[0] != agents.SimilarClientDiscovery || names[1] != agents.ContentMarketing {
		t.Errorf("names: got %v", names)
	}

	if _, ok := c.Lookup("content marketing agent"); ok {
		t.Error("lookup should be case-sensitive")
	}

	desc := c.Describe()
	for _, want := range []string{
		`"Similar Client Discovery Agent"`,
		"Only when to use: when the company's update is about onboarding a new customer or client.",
		`"Content Marketing Agent"`,
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("Describe() missing %q", want)
		}
	}

	list := c.Agents()
	list[0].Name = "mutated"
	if _, ok := c.Lookup(agents.SimilarClientDiscovery); !ok {
		t.Error("Agents() exposed internal storage")
	}
}
