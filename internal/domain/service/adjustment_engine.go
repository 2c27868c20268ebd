package service

import (
	"fmt"
	"math"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// Probability bounds applied after all rules have run.
const (
	MinProbability = 0.0
	MaxProbability = 0.99
)

// Reasons emitted by the default rules.
const (
	ReasonRecentMissedInstallment = "Recent missed installment detected."
	ReasonRentingWithDelinquency  = "High Risk combination: Renting with delinquency."
	ReasonCriticalDisposable      = "Critical: Extremely low disposable income."
	ReasonLowDisposable           = "Warning: Low disposable income."
)

// Rule adjusts the running default probability using one applicant attribute.
// A rule that does not fire returns the probability unchanged and an empty reason.
type Rule struct {
	Apply func(probability float64, in model.ApplicantInput) (float64, string)
	Name  string
}

// RentingSurcharge adds a flat 5 points for renters. It never emits a reason.
var RentingSurcharge = Rule{
	Name: "renting_surcharge",
	Apply: func(p float64, in model.ApplicantInput) (float64, string) {
		if in.HomeOwnership().IsRenting() {
			return p + 0.05, ""
		}
		return p, ""
	},
}

// MissedInstallmentPenalty floors the probability for any recent delinquency.
var MissedInstallmentPenalty = Rule{
	Name: "missed_installment_penalty",
	Apply: func(p float64, in model.ApplicantInput) (float64, string) {
		switch n := in.MissedInstallments(); {
		case n == 1:
			return math.Max(p, 0.45) + 0.15, ReasonRecentMissedInstallment
		case n > 1:
			return math.Max(p, 0.85), fmt.Sprintf("Critical: %d missed installments.", n)
		default:
			return p, ""
		}
	},
}

// RentingDelinquency floors renters with any missed installment at 0.80.
var RentingDelinquency = Rule{
	Name: "renting_delinquency",
	Apply: func(p float64, in model.ApplicantInput) (float64, string) {
		if in.HomeOwnership().IsRenting() && in.MissedInstallments() > 0 {
			return math.Max(p, 0.80), ReasonRentingWithDelinquency
		}
		return p, ""
	},
}

// DisposableIncome penalises thin monthly margins after debt payments.
var DisposableIncome = Rule{
	Name: "disposable_income",
	Apply: func(p float64, in model.ApplicantInput) (float64, string) {
		switch d := in.DisposableIncome(); {
		case d < 1000:
			return math.Max(p, 0.90), ReasonCriticalDisposable
		case d < 3000:
			return p + 0.10, ReasonLowDisposable
		default:
			return p, ""
		}
	},
}

// DefaultRules returns the production rule list. Order is significant.
func DefaultRules() []Rule {
	return []Rule{
		RentingSurcharge,
		MissedInstallmentPenalty,
		RentingDelinquency,
		DisposableIncome,
	}
}

// AdjustmentEngine folds an ordered rule list over a base probability and
// clamps the result. It holds no mutable state and is safe for concurrent use.
type AdjustmentEngine struct {
	rules []Rule
}

// NewAdjustmentEngine creates an engine over rules, or over DefaultRules when
// none are given.
func NewAdjustmentEngine(rules ...Rule) *AdjustmentEngine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &AdjustmentEngine{rules: r}
}

// Adjust runs every rule in order and returns the resulting assessment.
func (e *AdjustmentEngine) Adjust(base float64, in model.ApplicantInput) *model.RiskAssessment {
	p := base
	reasons := make([]string, 0, len(e.rules))
	fired := make([]string, 0, len(e.rules))

	for _, rule := range e.rules {
		var reason string
		p, reason = rule.Apply(p, in)
		if reason != "" {
			reasons = append(reasons, reason)
			fired = append(fired, rule.Name)
		}
	}

	return model.NewRuleAssessment(base, p, Clamp(p), reasons, fired)
}

// RuleNames lists the configured rules in evaluation order.
func (e *AdjustmentEngine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Clamp bounds p to [MinProbability, MaxProbability].
func Clamp(p float64) float64 {
	return math.Max(MinProbability, math.Min(p, MaxProbability))
}
