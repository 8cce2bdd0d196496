package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CompletionSnapshot freezes a project's final score at the moment it is
// marked completed. At most one snapshot per project is active at any time;
// deactivated rows are kept for audit, their items are not.
type CompletionSnapshot struct {
	gorm.Model
	ProjectID         uint      `json:"project_id" gorm:"index;not null"`
	FinalProjectScore float64   `json:"final_project_score"`
	CompletedAt       time.Time `json:"completed_at"`
	IsActive          bool      `json:"is_active" gorm:"index"`
	CreatedByID       uint      `json:"created_by_id"`

	// Breakdown of the resolved scoring components at freeze time
	ComponentsJSON datatypes.JSON `json:"components_json"`

	Items []SnapshotItem `json:"items" gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

func (CompletionSnapshot) TableName() string {
	return "project_completion_snapshots"
}

// SnapshotItem is one participant's frozen share under a snapshot.
type SnapshotItem struct {
	gorm.Model
	SnapshotID     uint    `json:"snapshot_id" gorm:"index;not null"`
	UserID         uint    `json:"user_id" gorm:"index;not null"`
	UserEvalScore  float64 `json:"user_eval_score"` // 0-10, entered at completion
	ConvertedScore float64 `json:"converted_score"` // allocated share of the final score
}

func (SnapshotItem) TableName() string {
	return "project_completion_snapshot_items"
}
