package valueobject

import "fmt"

// Classification thresholds. Both comparisons are strict.
const (
	HighRiskThreshold   = 0.60
	MediumRiskThreshold = 0.30
)

// RiskCategory is an immutable value object for the final risk verdict.
type RiskCategory struct {
	value string
	label string
	color string
}

var (
	RiskCategoryLow    = RiskCategory{value: "LOW", label: "Low Risk", color: "green"}
	RiskCategoryMedium = RiskCategory{value: "MEDIUM", label: "Medium Risk", color: "#ffcc00"}
	RiskCategoryHigh   = RiskCategory{value: "HIGH", label: "High Risk", color: "red"}
)

// RiskCategoryFromString reconstructs a RiskCategory from its string representation.
func RiskCategoryFromString(s string) (RiskCategory, error) {
	switch s {
	case "LOW":
		return RiskCategoryLow, nil
	case "MEDIUM":
		return RiskCategoryMedium, nil
	case "HIGH":
		return RiskCategoryHigh, nil
	default:
		return RiskCategory{}, fmt.Errorf("invalid risk category: %s", s)
	}
}

// RiskCategoryFromProbability classifies a final default probability.
// 0.30 is LOW and 0.60 is MEDIUM.
func RiskCategoryFromProbability(p float64) RiskCategory {
	switch {
	case p > HighRiskThreshold:
		return RiskCategoryHigh
	case p > MediumRiskThreshold:
		return RiskCategoryMedium
	default:
		return RiskCategoryLow
	}
}

// String returns the string representation.
func (r RiskCategory) String() string {
	return r.value
}

// Label returns the human readable label, e.g. "High Risk".
func (r RiskCategory) Label() string {
	return r.label
}

// Color returns the display color hint.
func (r RiskCategory) Color() string {
	return r.color
}

// IsHigh reports whether this is the HIGH category.
func (r RiskCategory) IsHigh() bool {
	return r.value == RiskCategoryHigh.value
}

// IsZero returns true if the RiskCategory has not been set.
func (r RiskCategory) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskCategory.
func (r RiskCategory) Equal(other RiskCategory) bool {
	return r.value == other.value
}
