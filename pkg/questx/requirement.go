package questx

import "math"

// FinancialThreshold is the target value from which a step counts as a
// fundraising goal rather than a headcount.
const FinancialThreshold = 1000

// Kind classifies what a step's target measures.
type Kind string

const (
	KindFinancial  Kind = "financial"
	KindVolunteers Kind = "volunteers"
)

// Requirement is the amount a step has accumulated against its target.
// Values are currency units for financial steps and people otherwise.
type Requirement struct {
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
}

// ClassifyRequirement returns KindFinancial iff target >= FinancialThreshold.
func ClassifyRequirement(target float64) Kind {
	if target >= FinancialThreshold {
		return KindFinancial
	}
	return KindVolunteers
}

// Kind classifies r by its current target.
func (r Requirement) Kind() Kind {
	return ClassifyRequirement(r.TargetValue)
}

// ApplyContribution returns a copy of r with amount added to CurrentValue,
// clamped to [0, TargetValue]. Negative amounts withdraw.
func ApplyContribution(r Requirement, amount float64) Requirement {
	r.CurrentValue = max(0, min(r.CurrentValue+amount, r.TargetValue))
	return r
}

// StepProgress is round(current / target * 100) clamped to [0, 100]. A
// non-positive target has no meaningful ratio and reports 0.
func StepProgress(r Requirement) int {
	if r.TargetValue <= 0 {
		return 0
	}
	pct := math.Round(r.CurrentValue / r.TargetValue * 100)
	return int(max(0, min(pct, 100)))
}
