package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/alexryan/leadscout/internal/types"
)

// Company status lifecycle values.
const (
	StatusDiscovered = "discovered"
	StatusProfiling  = "profiling"
	StatusAnalyzed   = "analyzed"
	StatusContacted  = "contacted"
)

// Company is a stored prospect company row.
type Company struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Domain        string          `json:"domain,omitempty"`
	Industry      string          `json:"industry,omitempty"`
	Sector        string          `json:"sector,omitempty"`
	EmployeeCount *int            `json:"employee_count,omitempty"`
	EmployeeRange string          `json:"employee_range,omitempty"`
	Description   string          `json:"description,omitempty"`
	Website       string          `json:"website,omitempty"`
	LinkedInURL   string          `json:"linkedin_url,omitempty"`
	FoundedYear   *int            `json:"founded_year,omitempty"`
	Location      *types.Location `json:"location,omitempty"`
	TechStack     []string        `json:"tech_stack,omitempty"`
	Funding       *types.Funding  `json:"funding,omitempty"`
	LeadScore     float64         `json:"lead_score"`
	Status        string          `json:"status"`
	SourcesUsed   []string        `json:"sources_used,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Contact is a stored contact row belonging to a company.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	types.Contact
	CreatedAt time.Time `json:"created_at"`
}

// Intelligence is a stored AI analysis report for a company.
type Intelligence struct {
	ID         uuid.UUID       `json:"id"`
	CompanyID  uuid.UUID       `json:"company_id"`
	Summary    string          `json:"summary,omitempty"`
	PainPoints []string        `json:"pain_points,omitempty"`
	Priorities []string        `json:"priorities,omitempty"`
	Outreach   json.RawMessage `json:"outreach,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Task status values.
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
)

// Task is a persisted background task row.
type Task struct {
	ID         uuid.UUID       `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
