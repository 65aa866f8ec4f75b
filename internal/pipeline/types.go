package pipeline

import (
	"time"

	"github.com/JaimeStill/rively/internal/agents"
)

// State bag keys.
const (
	KeyInput        = "input"
	KeyContext      = "customer_context"
	KeyDraft        = "draft"
	KeyEscalate     = "escalate"
	KeyDecision     = "decision"
	KeyAgentResult  = "agent_result"
	KeyAgentOutput  = "agent_output"
	KeyInvoked      = "invoked"
	KeyActionPoint  = "action_point"
	KeyDegradations = "degradations"
	KeyResult       = "result"
)

// Stage names used in degradations and metrics.
const (
	StageContext    = "context"
	StageDispatch   = "dispatch"
	StageInvoke     = "invoke"
	StageSynthesize = "synthesize"
)

// NoActionPoint replaces an empty or missing synthesized action point.
const NoActionPoint = "Agent processed but no specific action point generated"

// Input is one raw company update.
type Input struct {
	Text             string     `json:"text"`
	SourceType       string     `json:"source_type"`
	SourceURL        string     `json:"source_url,omitempty"`
	CompanyName      string     `json:"company_name"`
	CompanyType      string     `json:"company_type"`
	TrackedCompanyID string     `json:"tracked_company_id"`
	CustomerID       string     `json:"customer_id"`
	PostedAt         *time.Time `json:"posted_at,omitempty"`
	ActionPoint      string     `json:"action_point,omitempty"`
}

// Draft is the structured classification of an update. ActionPoint is set
// only by a successful synthesis or by the caller when escalation is skipped.
type Draft struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	UpdateType      string  `json:"update_type"`
	UpdateCategory  string  `json:"update_category"`
	Actionable      bool    `json:"actionable"`
	UsefulnessScore int     `json:"usefulness_score"`
	ActionPoint     *string `json:"action_point"`
}

// Decision is the dispatch stage's choice of agent.
type Decision struct {
	Useful     bool   `json:"is_agent_useful"`
	AgentName  string `json:"agent_name"`
	AgentInput string `json:"agent_input"`
}

// ErrorKind classifies a soft stage failure.
type ErrorKind string

// Soft failure kinds. KindNone marks a successful outcome.
const (
	KindNone         ErrorKind = ""
	KindContext      ErrorKind = "context_unavailable"
	KindDispatch     ErrorKind = "dispatch_failed"
	KindUnknownAgent ErrorKind = "unknown_agent"
	KindInvoke       ErrorKind = "agent_failed"
	KindSynthesis    ErrorKind = "synthesis_failed"
)

// Outcome carries a stage value or the kind of soft failure that replaced it.
type Outcome[T any] struct {
	Value T
	Kind  ErrorKind
	Err   error
}

// OK reports whether the stage succeeded.
func (o Outcome[T]) OK() bool {
	return o.Kind == KindNone
}

func succeed[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func degrade[T any](kind ErrorKind, err error) Outcome[T] {
	return Outcome[T]{Kind: kind, Err: err}
}

// Degradation records a soft failure the run recovered from.
type Degradation struct {
	Stage   string    `json:"stage"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message,omitempty"`
}

// Result is the final output of a pipeline run.
type Result struct {
	Draft        Draft          `json:"draft"`
	Escalated    bool           `json:"escalated"`
	Decision     *Decision      `json:"decision,omitempty"`
	Agent        *agents.Result `json:"agent,omitempty"`
	Degradations []Degradation  `json:"degradations,omitempty"`
	CompletedAt  time.Time      `json:"completed_at"`
}

// outcome returns the run label for the pipeline runs counter.
func (r *Result) outcome() string {
	switch {
	case len(r.Degradations) > 0:
		return "degraded"
	case !r.Escalated:
		return "draft"
	case r.Agent == nil:
		return "declined"
	default:
		return "synthesized"
	}
}
