package updates

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/rively/pkg/query"
	"github.com/JaimeStill/rively/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "company_updates", "u").
	Project("id", "ID").
	Project("tracked_company_id", "TrackedCompanyID").
	Project("customer_id", "CustomerID").
	Project("title", "Title").
	Project("description", "Description").
	Project("update_type", "UpdateType").
	Project("update_category", "UpdateCategory").
	Project("source_type", "SourceType").
	Project("source_url", "SourceURL").
	Project("actionable", "Actionable").
	Project("usefulness_score", "UsefulnessScore").
	Project("action_point", "ActionPoint").
	Project("escalated", "Escalated").
	Project("agent_name", "AgentName").
	Project("content_hash", "ContentHash").
	Project("posted_at", "PostedAt").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const returning = `id, tracked_company_id, customer_id, title, description,
	update_type, update_category, source_type, source_url, actionable,
	usefulness_score, action_point, escalated, agent_name, content_hash,
	posted_at, created_at`

// Filters contains optional filtering criteria for company update queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	TrackedCompanyID *string `json:"tracked_company_id,omitempty"`
	CustomerID       *string `json:"customer_id,omitempty"`
	UpdateType       *string `json:"update_type,omitempty"`
	UpdateCategory   *string `json:"update_category,omitempty"`
	SourceType       *string `json:"source_type,omitempty"`
	Actionable       *bool   `json:"actionable,omitempty"`
	Escalated        *bool   `json:"escalated,omitempty"`
	AgentName        *string `json:"agent_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("TrackedCompanyID", f.TrackedCompanyID).
		WhereEquals("CustomerID", f.CustomerID).
		WhereEquals("UpdateType", f.UpdateType).
		WhereEquals("UpdateCategory", f.UpdateCategory).
		WhereEquals("SourceType", f.SourceType).
		WhereEquals("Actionable", f.Actionable).
		WhereEquals("Escalated", f.Escalated).
		WhereContains("AgentName", f.AgentName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Boolean parameters that fail to parse are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("tracked_company_id"); v != "" {
		f.TrackedCompanyID = &v
	}

	if v := values.Get("customer_id"); v != "" {
		f.CustomerID = &v
	}

	if v := values.Get("update_type"); v != "" {
		f.UpdateType = &v
	}

	if v := values.Get("update_category"); v != "" {
		f.UpdateCategory = &v
	}

	if v := values.Get("source_type"); v != "" {
		f.SourceType = &v
	}

	if v := values.Get("actionable"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Actionable = &b
		}
	}

	if v := values.Get("escalated"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Escalated = &b
		}
	}

	if v := values.Get("agent_name"); v != "" {
		f.AgentName = &v
	}

	return f
}

func scanUpdate(s repository.Scanner) (CompanyUpdate, error) {
	var u CompanyUpdate
	err := s.Scan(
		&u.ID,
		&u.TrackedCompanyID,
		&u.CustomerID,
		&u.Title,
		&u.Description,
		&u.UpdateType,
		&u.UpdateCategory,
		&u.SourceType,
		&u.SourceURL,
		&u.Actionable,
		&u.UsefulnessScore,
		&u.ActionPoint,
		&u.Escalated,
		&u.AgentName,
		&u.ContentHash,
		&u.PostedAt,
		&u.CreatedAt,
	)
	return u, err
}

func scanID(s repository.Scanner) (string, error) {
	var id string
	err := s.Scan(&id)
	return id, err
}
