package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/credit-risk-service/internal/domain/valueobject"
)

// UnknownRule names the source of a reason recorded without its rule.
const UnknownRule = "unknown"

// RiskAssessment is the immutable outcome of running the adjustment rules over
// a base default probability.
type RiskAssessment struct {
	assessedAt          time.Time
	category            valueobject.RiskCategory
	reasons             []string
	reasonRules         []string
	baseProbability     float64
	adjustedProbability float64
	finalProbability    float64
	id                  uuid.UUID
}

// NewRiskAssessment records an engine outcome. The category is derived from
// finalProbability alone.
func NewRiskAssessment(base, adjusted, final float64, reasons []string) *RiskAssessment {
	return NewRuleAssessment(base, adjusted, final, reasons, nil)
}

// NewRuleAssessment is NewRiskAssessment with the name of the rule behind each
// reason: rules[i] produced reasons[i].
func NewRuleAssessment(base, adjusted, final float64, reasons, rules []string) *RiskAssessment {
	r := make([]string, len(reasons))
	copy(r, reasons)

	names := make([]string, len(reasons))
	for i := range names {
		names[i] = UnknownRule
		if i < len(rules) && rules[i] != "" {
			names[i] = rules[i]
		}
	}

	return &RiskAssessment{
		reasonRules:         names,
		id:                  uuid.New(),
		baseProbability:     base,
		adjustedProbability: adjusted,
		finalProbability:    final,
		reasons:             r,
		category:            valueobject.RiskCategoryFromProbability(final),
		assessedAt:          time.Now().UTC(),
	}
}

// --- Accessors ---

func (a *RiskAssessment) ID() uuid.UUID                      { return a.id }
func (a *RiskAssessment) BaseProbability() float64           { return a.baseProbability }
func (a *RiskAssessment) AdjustedProbability() float64       { return a.adjustedProbability }
func (a *RiskAssessment) FinalProbability() float64          { return a.finalProbability }
func (a *RiskAssessment) Category() valueobject.RiskCategory { return a.category }
func (a *RiskAssessment) Color() string                      { return a.category.Color() }
func (a *RiskAssessment) AssessedAt() time.Time              { return a.assessedAt }

// Reasons returns a copy of the fired rule explanations in rule order.
func (a *RiskAssessment) Reasons() []string {
	out := make([]string, len(a.reasons))
	copy(out, a.reasons)
	return out
}

// ReasonRules returns the rule name behind each entry of Reasons.
func (a *RiskAssessment) ReasonRules() []string {
	out := make([]string, len(a.reasonRules))
	copy(out, a.reasonRules)
	return out
}
