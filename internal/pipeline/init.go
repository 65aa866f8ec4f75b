package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// InitNode returns a state node that resolves the customer context once for
// the run. A missing context is recorded as a degradation and the run goes on.
func InitNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, ok := get[Input](s, KeyInput)
		if !ok {
			return s, fmt.Errorf("init: %w: missing %s in state", ErrInvalidInput, KeyInput)
		}

		customer := rt.Contexts.Get(ctx, input.CustomerID)
		if customer == nil {
			s = recordDegradation(s, rt, Degradation{
				Stage: StageContext,
				Kind:  KindContext,
			})
		}

		rt.Logger.InfoContext(
			ctx, "init node complete",
			"customer_id", input.CustomerID,
			"context_fields", len(customer),
		)

		return s.Set(KeyContext, customer), nil
	})
}
