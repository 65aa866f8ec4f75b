package prompts

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "title": "<short title>",
  "description": "<key insights>",
  "update_type": "<type>",
  "update_category": "<category>",
  "actionable_and_useful": "true" or "false",
  "update_usefulness_score": <integer 0-100>,
  "action_point": "<optional next step or empty string>"
}

Field constraints:
- actionable_and_useful: "true" only when a product manager can act on
  the update.
- update_usefulness_score: whole number between 0 and 100.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Base every field on the provided text only`

const dispatchSpec = `Return ONLY this JSON format:

{
  "is_agent_useful": "true" or "false",
  "agent_name": "exact agent name from catalogue or empty string",
  "agent_input": "specific input for the agent or empty string"
}`

const synthesizeSpec = `Return ONLY this JSON format:

{
  "action_point": "A clear, specific recommendation with actionable next steps."
}`

var specs = map[Stage]string{
	StageClassify:   classifySpec,
	StageDispatch:   dispatchSpec,
	StageSynthesize: synthesizeSpec,
}

// Spec returns the hardcoded specification for a pipeline stage.
// Specifications define the expected output shape and are not overridable.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
