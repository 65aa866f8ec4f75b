package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/rively/internal/prompts"
	"github.com/JaimeStill/rively/pkg/formatting"
)

var draftKeys = []string{
	"title",
	"description",
	"update_type",
	"update_category",
	"actionable_and_useful",
	"update_usefulness_score",
	"action_point",
}

// Classify prompts the model for a structured draft of the update. Any
// failure here is fatal for the run.
func Classify(ctx context.Context, rt *Runtime, input Input) (Draft, error) {
	prompt, err := prompts.Compose(ctx, rt.Prompts, prompts.StageClassify, prompts.ClassifyData{
		Text:        input.Text,
		SourceType:  input.SourceType,
		CompanyType: input.CompanyType,
		Company:     input.CompanyName,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	reply, err := rt.Model.Chat(ctx, prompt)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: chat call: %w", ErrClassifyFailed, err)
	}

	return toDraft(formatting.Extract(reply, draftKeys...)), nil
}

func toDraft(fields map[string]any) Draft {
	return Draft{
		Title:           formatting.String(fields, "title"),
		Description:     formatting.String(fields, "description"),
		UpdateType:      formatting.String(fields, "update_type"),
		UpdateCategory:  formatting.String(fields, "update_category"),
		Actionable:      formatting.Bool(fields, "actionable_and_useful"),
		UsefulnessScore: clampScore(formatting.Int(fields, "update_usefulness_score")),
	}
}

func clampScore(score int) int {
	return min(max(score, 0), 100)
}

// ClassifyNode returns a state node that classifies the input and stores the draft.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		input, ok := get[Input](s, KeyInput)
		if !ok {
			return s, fmt.Errorf("classify: %w: missing %s in state", ErrClassifyFailed, KeyInput)
		}

		draft, err := Classify(ctx, rt, input)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "classify node complete",
			"title", draft.Title,
			"update_type", draft.UpdateType,
			"actionable", draft.Actionable,
			"usefulness_score", draft.UsefulnessScore,
		)

		return s.Set(KeyDraft, draft), nil
	})
}
