package Models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// Project carries the per-project scoring inputs. The scoring columns are
// deployment-optional: older databases may miss any of them, so reads go
// through Scoring.Availability rather than assuming the full set exists.
type Project struct {
	gorm.Model
	Name     string `json:"name"`
	ClientID *uint  `json:"client_id"`
	Status   string `json:"status" gorm:"type:varchar(20);default:in_progress;index"`

	CompletedAt  *time.Time `json:"completed_at" gorm:"index"`
	CancelReason string     `json:"cancel_reason"`

	ContractAmount float64 `json:"contract_amount"`

	// Scoring components (see Scoring.Components)
	SalesScore        float64 `json:"sales_score"`
	ProjectPeriodDays float64 `json:"project_period_days"`
	Difficulty        float64 `json:"difficulty"`
	ProgressStep      float64 `json:"progress_step"`
	WorkSpeed         float64 `json:"work_speed"`
	InternalScore     float64 `json:"internal_score"`
	ExternalScore     float64 `json:"external_score"`
	ParticipantCount  float64 `json:"participant_count"`

	// Stored profit-rate score. NULL means "not entered", which is distinct
	// from an explicit 0 and triggers the cost-based fallback.
	ProfitRate *float64 `json:"profit_rate"`

	// Cost columns feeding the profit-rate fallback
	CostMaterial float64 `json:"cost_material"`
	CostLabor    float64 `json:"cost_labor"`
	CostOffice   float64 `json:"cost_office"`
	CostOther    float64 `json:"cost_other"`
	SalesCost    float64 `json:"sales_cost"`
	CostProgress float64 `json:"cost_progress"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectEvaluation is a live-path evaluation entry. Multiple entries may
// exist per user/project; reports use the most recent one in the period
// (created_at DESC, id DESC on ties).
type ProjectEvaluation struct {
	gorm.Model
	ProjectID uint    `json:"project_id" gorm:"index;not null"`
	UserID    uint    `json:"user_id" gorm:"index;not null"`
	Score     float64 `json:"score"` // 0-10
	Comment   string  `json:"comment" gorm:"type:text"`
}

func (ProjectEvaluation) TableName() string {
	return "project_evaluations"
}
