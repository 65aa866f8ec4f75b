package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/rively/internal/contexts"
	"github.com/JaimeStill/rively/internal/prompts"
	"github.com/JaimeStill/rively/pkg/formatting"
)

var decisionKeys = []string{"is_agent_useful", "agent_name", "agent_input"}

// Dispatch asks the model whether one of the catalogued agents should act on
// the update. A failed render or model call degrades to KindDispatch.
func Dispatch(
	ctx context.Context,
	rt *Runtime,
	input Input,
	draft Draft,
	customer contexts.Context,
) Outcome[Decision] {
	prompt, err := prompts.Compose(ctx, rt.Prompts, prompts.StageDispatch, prompts.DispatchData{
		Company:         input.CompanyName,
		CustomerContext: contexts.Format(customer),
		CompanyType:     input.CompanyType,
		UpdateType:      draft.UpdateType,
		UpdateCategory:  draft.UpdateCategory,
		Text:            input.Text,
		Title:           draft.Title,
		KeyInsights:     draft.Description,
		AgentCatalogue:  rt.Invoker.Catalogue().Describe(),
	})
	if err != nil {
		return degrade[Decision](KindDispatch, fmt.Errorf("%w: %w", ErrDispatchFailed, err))
	}

	reply, err := rt.Model.Chat(ctx, prompt)
	if err != nil {
		return degrade[Decision](KindDispatch, fmt.Errorf("%w: chat call: %w", ErrDispatchFailed, err))
	}

	fields := formatting.Extract(reply, decisionKeys...)

	return succeed(Decision{
		Useful:     formatting.Bool(fields, "is_agent_useful"),
		AgentName:  formatting.String(fields, "agent_name"),
		AgentInput: formatting.String(fields, "agent_input"),
	})
}

// Selected reports whether the decision names an agent to run.
func (d Decision) Selected() bool {
	return d.Useful && d.AgentName != ""
}

// DispatchNode returns a state node that selects an agent for an escalated draft.
func DispatchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, _ := get[Input](s, KeyInput)
		draft, _ := get[Draft](s, KeyDraft)
		customer, _ := get[contexts.Context](s, KeyContext)

		outcome := Dispatch(ctx, rt, input, draft, customer)
		if !outcome.OK() {
			rt.Logger.WarnContext(ctx, "dispatch degraded", "error", outcome.Err)
			s = recordDegradation(s, rt, Degradation{
				Stage:   StageDispatch,
				Kind:    outcome.Kind,
				Message: errMessage(outcome.Err),
			})
		}

		decision := outcome.Value

		rt.Logger.InfoContext(
			ctx, "dispatch node complete",
			"agent_useful", decision.Useful,
			"agent_name", decision.AgentName,
		)

		if decision.Useful && decision.AgentName == "" {
			rt.Logger.WarnContext(ctx, "agent deemed useful but no agent name provided")
		}

		s = s.Set(KeyDecision, decision)
		return s.Set(KeyInvoked, false), nil
	})
}

func agentSelected(s state.State) bool {
	d, _ := get[Decision](s, KeyDecision)
	return d.Selected()
}
