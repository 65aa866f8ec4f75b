package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/rively/internal/contexts"
	"github.com/JaimeStill/rively/internal/prompts"
	"github.com/JaimeStill/rively/pkg/formatting"
)

// Synthesize turns an agent's output into a single action point. A failed
// render or model call degrades to KindSynthesis.
func Synthesize(
	ctx context.Context,
	rt *Runtime,
	input Input,
	draft Draft,
	agentName, agentOutput string,
	customer contexts.Context,
) Outcome[string] {
	prompt, err := prompts.Compose(ctx, rt.Prompts, prompts.StageSynthesize, prompts.SynthesizeData{
		Company:         input.CompanyName,
		CompanyType:     input.CompanyType,
		UpdateCategory:  draft.UpdateCategory,
		UpdateType:      draft.UpdateType,
		AgentName:       agentName,
		AgentOutput:     agentOutput,
		CustomerContext: contexts.Format(customer),
	})
	if err != nil {
		return degrade[string](KindSynthesis, fmt.Errorf("%w: %w", ErrSynthesisFailed, err))
	}

	reply, err := rt.Model.Chat(ctx, prompt)
	if err != nil {
		return degrade[string](KindSynthesis, fmt.Errorf("%w: chat call: %w", ErrSynthesisFailed, err))
	}

	fields := formatting.Extract(reply, "action_point")
	return succeed(actionPoint(fields["action_point"]))
}

func actionPoint(v any) string {
	switch val := v.(type) {
	case nil:
		return NoActionPoint
	case string:
		if val == "" {
			return NoActionPoint
		}
		return val
	case bool:
		if !val {
			return NoActionPoint
		}
		return "true"
	case float64:
		if val == 0 {
			return NoActionPoint
		}
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// SynthesizeNode returns a state node that derives the action point from the agent output.
func SynthesizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, _ := get[Input](s, KeyInput)
		draft, _ := get[Draft](s, KeyDraft)
		decision, _ := get[Decision](s, KeyDecision)
		output, _ := get[string](s, KeyAgentOutput)
		customer, _ := get[contexts.Context](s, KeyContext)

		outcome := Synthesize(ctx, rt, input, draft, decision.AgentName, output, customer)
		if !outcome.OK() {
			rt.Logger.WarnContext(ctx, "synthesis degraded", "error", outcome.Err)
			return recordDegradation(s, rt, Degradation{
				Stage:   StageSynthesize,
				Kind:    outcome.Kind,
				Message: errMessage(outcome.Err),
			}), nil
		}

		rt.Logger.InfoContext(ctx, "synthesize node complete", "agent", decision.AgentName)

		return s.Set(KeyActionPoint, outcome.Value), nil
	})
}
