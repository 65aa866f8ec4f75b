package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/rively/internal/agents"
)

// Execute runs the pipeline for a single update. It builds the state graph,
// executes it, and extracts the Result from the final state. Only a
// classification failure returns an error.
func Execute(ctx context.Context, rt *Runtime, input Input) (*Result, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyInput, input)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		rt.Metrics.PipelineRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	result, err := extractResult(finalState)
	if err != nil {
		rt.Metrics.PipelineRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	rt.Metrics.PipelineRuns.WithLabelValues(result.outcome()).Inc()
	return result, nil
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("rively-pipeline")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"init", InitNode(rt)},
		{"classify", ClassifyNode(rt)},
		{"gate", GateNode(rt)},
		{"dispatch", DispatchNode(rt)},
		{"invoke", InvokeNode(rt)},
		{"synthesize", SynthesizeNode(rt)},
		{"finalize", FinalizeNode(rt)},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	escalated := flag(KeyEscalate)
	invoked := flag(KeyInvoked)

	edges := []struct {
		from, to  string
		predicate func(state.State) bool
	}{
		{"init", "classify", nil},
		{"classify", "gate", nil},
		{"gate", "dispatch", escalated},
		{"gate", "finalize", state.Not(escalated)},
		{"dispatch", "invoke", agentSelected},
		{"dispatch", "finalize", state.Not(agentSelected)},
		{"invoke", "synthesize", invoked},
		{"invoke", "finalize", state.Not(invoked)},
		{"synthesize", "finalize", nil},
	}

	for _, e := range edges {
		if err := graph.AddEdge(e.from, e.to, e.predicate); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint("init"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

// FinalizeNode returns a state node that assembles the Result from the state bag.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, _ := get[Input](s, KeyInput)
		draft, ok := get[Draft](s, KeyDraft)
		if !ok {
			return s, fmt.Errorf("finalize: missing %s in state", KeyDraft)
		}

		escalated, _ := get[bool](s, KeyEscalate)
		degradations, _ := get[[]Degradation](s, KeyDegradations)

		result := &Result{
			Draft:        draft,
			Escalated:    escalated,
			Degradations: degradations,
			CompletedAt:  time.Now(),
		}

		if d, ok := get[Decision](s, KeyDecision); ok {
			result.Decision = &d
		}

		if invoked, _ := get[bool](s, KeyInvoked); invoked {
			if r, ok := get[agents.Result](s, KeyAgentResult); ok {
				result.Agent = &r
			}
		}

		switch ap, ok := get[string](s, KeyActionPoint); {
		case ok:
			result.Draft.ActionPoint = &ap
		case !escalated && input.ActionPoint != "":
			supplied := input.ActionPoint
			result.Draft.ActionPoint = &supplied
		}

		rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"escalated", result.Escalated,
			"action_point", result.Draft.ActionPoint != nil,
			"degradations", len(result.Degradations),
		)

		return s.Set(KeyResult, result), nil
	})
}

func extractResult(s state.State) (*Result, error) {
	result, ok := get[*Result](s, KeyResult)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyResult)
	}
	return result, nil
}
