// Package updates implements the company update domain for Rively.
// It ingests raw updates through the pipeline, de-duplicates them per tracked
// company, and stores the resulting drafts for querying.
package updates

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/rively/internal/pipeline"
)

// NotUsefulTitle marks a draft the classifier judged irrelevant. Such drafts are not stored.
const NotUsefulTitle = "Not useful for product manager"

// CompanyUpdate is a stored pipeline result. It mirrors the company_updates table.
type CompanyUpdate struct {
	ID               uuid.UUID  `json:"id"`
	TrackedCompanyID string     `json:"tracked_company_id"`
	CustomerID       string     `json:"customer_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	UpdateType       string     `json:"update_type"`
	UpdateCategory   string     `json:"update_category"`
	SourceType       string     `json:"source_type"`
	SourceURL        *string    `json:"source_url"`
	Actionable       bool       `json:"actionable"`
	UsefulnessScore  int        `json:"usefulness_score"`
	ActionPoint      *string    `json:"action_point"`
	Escalated        bool       `json:"escalated"`
	AgentName        *string    `json:"agent_name"`
	ContentHash      string     `json:"content_hash"`
	PostedAt         *time.Time `json:"posted_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IngestCommand carries one raw update to run through the pipeline.
type IngestCommand struct {
	pipeline.Input
}

// BatchResult reports the outcome of one item of an IngestBatch call.
// Exactly one of Update and Error is set.
type BatchResult struct {
	Index  int            `json:"index"`
	Update *CompanyUpdate `json:"update,omitempty"`
	Error  string         `json:"error,omitempty"`
	Status int            `json:"status"`
}
