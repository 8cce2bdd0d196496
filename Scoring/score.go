package Scoring

// Components holds a project's scoring inputs after schema resolution.
// Fields backed by columns absent from the deployment are zero.
type Components struct {
	SalesScore        float64 `json:"sales_score"`
	ProjectPeriodDays float64 `json:"project_period_days"`
	Difficulty        float64 `json:"difficulty"`
	ProgressStep      float64 `json:"progress_step"`
	WorkSpeed         float64 `json:"work_speed"`
	InternalScore     float64 `json:"internal_score"`
	ExternalScore     float64 `json:"external_score"`
	ParticipantCount  float64 `json:"participant_count"`

	// Profit-rate sourcing: when a stored score exists it wins, otherwise
	// the score is derived from contract amount minus summed costs. The
	// contract amount contributes to the total only through that fallback.
	ProfitRate     float64 `json:"profit_rate"`
	HasProfitRate  bool    `json:"has_profit_rate"`
	ContractAmount float64 `json:"contract_amount"`
	CostSum        float64 `json:"cost_sum"`
}

// ProfitRateScore resolves the profit component under the sourcing rule above.
func (c Components) ProfitRateScore() float64 {
	if c.HasProfitRate {
		return c.ProfitRate
	}
	return (c.ContractAmount - c.CostSum) / 1_000_000.0
}

// ComputeFinalScore returns the project's final score P: the nine components
// summed in a fixed order, then truncated to one decimal. Pure and total;
// missing inputs are zeros, never errors.
func ComputeFinalScore(c Components) float64 {
	total := c.SalesScore +
		c.ProjectPeriodDays +
		c.Difficulty +
		c.ProgressStep +
		c.WorkSpeed +
		c.InternalScore +
		c.ExternalScore +
		c.ParticipantCount +
		c.ProfitRateScore()
	return TruncateToOneDecimal(total)
}
