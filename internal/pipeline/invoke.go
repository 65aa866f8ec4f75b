package pipeline

import (
	"context"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/rively/internal/agents"
	"github.com/JaimeStill/rively/internal/audit"
)

// InvokeNode returns a state node that calls the selected agent. A failed call
// still reaches synthesis with the failure text as output; an unknown agent
// ends the run with the draft.
func InvokeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, _ := get[Input](s, KeyInput)
		decision, _ := get[Decision](s, KeyDecision)

		message := agents.Compose(decision.AgentInput, input.Text)
		if message == "" {
			rt.Logger.WarnContext(ctx, "no agent input or raw text provided", "agent", decision.AgentName)
		}

		result, err := rt.Invoker.Invoke(ctx, decision.AgentName, message)
		if err != nil {
			rt.Logger.WarnContext(ctx, "agent invocation skipped", "agent", decision.AgentName, "error", err)
			s = recordDegradation(s, rt, Degradation{
				Stage:   StageInvoke,
				Kind:    KindUnknownAgent,
				Message: err.Error(),
			})
			return s.Set(KeyInvoked, false), nil
		}

		output := result.Output
		if !result.Success {
			output = "Agent API call failed: " + result.Err
			s = recordDegradation(s, rt, Degradation{
				Stage:   StageInvoke,
				Kind:    KindInvoke,
				Message: result.Err,
			})
		}

		rt.Recorder.Record(ctx, audit.TargetAgentOutput, map[string]any{
			"customer_id":  input.CustomerID,
			"company":      input.CompanyName,
			"agent_name":   decision.AgentName,
			"agent_output": output,
			"success":      result.Success,
		})

		s = s.Set(KeyAgentResult, result)
		s = s.Set(KeyAgentOutput, output)
		return s.Set(KeyInvoked, true), nil
	})
}
