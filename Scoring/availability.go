package Scoring

import (
	"log"

	"gorm.io/gorm"

	"Compass/Models"
)

// Availability records which optional projects columns exist in this
// deployment. Older databases may be missing any of the scoring or cost
// columns; a missing column degrades its component to 0 rather than failing
// the report. Resolve once per report call, not per project.
type Availability struct {
	SalesScore        bool
	ProjectPeriodDays bool
	Difficulty        bool
	ProgressStep      bool
	WorkSpeed         bool
	InternalScore     bool
	ExternalScore     bool
	ParticipantCount  bool
	ProfitRate        bool

	CostMaterial bool
	CostLabor    bool
	CostOffice   bool
	CostOther    bool
	SalesCost    bool
	CostProgress bool

	CompletedAt bool
}

// ResolveAvailability probes the projects table through the GORM migrator.
// A column the migrator cannot see is treated as absent and logged; the
// report proceeds either way.
func ResolveAvailability(db *gorm.DB) Availability {
	probe := func(col string) bool {
		ok := db.Migrator().HasColumn(&Models.Project{}, col)
		if !ok {
			log.Printf("projects.%s unavailable in this deployment, component degrades to 0", col)
		}
		return ok
	}

	return Availability{
		SalesScore:        probe("sales_score"),
		ProjectPeriodDays: probe("project_period_days"),
		Difficulty:        probe("difficulty"),
		ProgressStep:      probe("progress_step"),
		WorkSpeed:         probe("work_speed"),
		InternalScore:     probe("internal_score"),
		ExternalScore:     probe("external_score"),
		ParticipantCount:  probe("participant_count"),
		ProfitRate:        probe("profit_rate"),
		CostMaterial:      probe("cost_material"),
		CostLabor:         probe("cost_labor"),
		CostOffice:        probe("cost_office"),
		CostOther:         probe("cost_other"),
		SalesCost:         probe("sales_cost"),
		CostProgress:      probe("cost_progress"),
		CompletedAt:       probe("completed_at"),
	}
}

// Load maps a project row to scoring components under the resolved
// capability set. Unavailable columns read as 0; a NULL stored profit rate
// falls through to the cost-based derivation.
func (a Availability) Load(p Models.Project) Components {
	c := Components{ContractAmount: p.ContractAmount}

	if a.SalesScore {
		c.SalesScore = p.SalesScore
	}
	if a.ProjectPeriodDays {
		c.ProjectPeriodDays = p.ProjectPeriodDays
	}
	if a.Difficulty {
		c.Difficulty = p.Difficulty
	}
	if a.ProgressStep {
		c.ProgressStep = p.ProgressStep
	}
	if a.WorkSpeed {
		c.WorkSpeed = p.WorkSpeed
	}
	if a.InternalScore {
		c.InternalScore = p.InternalScore
	}
	if a.ExternalScore {
		c.ExternalScore = p.ExternalScore
	}
	if a.ParticipantCount {
		c.ParticipantCount = p.ParticipantCount
	}
	if a.ProfitRate && p.ProfitRate != nil {
		c.HasProfitRate = true
		c.ProfitRate = *p.ProfitRate
	}

	if a.CostMaterial {
		c.CostSum += p.CostMaterial
	}
	if a.CostLabor {
		c.CostSum += p.CostLabor
	}
	if a.CostOffice {
		c.CostSum += p.CostOffice
	}
	if a.CostOther {
		c.CostSum += p.CostOther
	}
	if a.SalesCost {
		c.CostSum += p.SalesCost
	}
	if a.CostProgress {
		c.CostSum += p.CostProgress
	}

	return c
}
