package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/rively/internal/audit"
)

// EscalationThreshold is the usefulness score a draft must exceed to be
// escalated to an agent.
const EscalationThreshold = 70

// Escalate reports whether a draft qualifies for agent dispatch.
func Escalate(actionable bool, score int) bool {
	return actionable && score > EscalationThreshold
}

// GateNode returns a state node that evaluates the threshold and records the
// decision to the threshold audit trail.
func GateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, _ := get[Input](s, KeyInput)
		draft, _ := get[Draft](s, KeyDraft)

		escalate := Escalate(draft.Actionable, draft.UsefulnessScore)

		rt.Logger.InfoContext(
			ctx, "threshold evaluated",
			"actionable", draft.Actionable,
			"usefulness_score", draft.UsefulnessScore,
			"threshold", EscalationThreshold,
			"escalate", escalate,
		)

		rt.Recorder.Record(ctx, audit.TargetThreshold, map[string]any{
			"customer_id":     input.CustomerID,
			"company":         input.CompanyName,
			"threshold_data":  fmt.Sprintf("Actionable: %t, Usefulness Score: %d", draft.Actionable, draft.UsefulnessScore),
			"agent_triggered": escalate,
		})

		if escalate {
			rt.Metrics.Escalations.Inc()
		}

		return s.Set(KeyEscalate, escalate), nil
	})
}
