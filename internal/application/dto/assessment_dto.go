package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// AssessApplicantRequest is the input DTO for the AssessApplicant use case.
// Fields are pointers so that an absent field can be told apart from zero.
type AssessApplicantRequest struct {
	MonthlyIncome       *float64 `json:"monthly_income"`
	MonthlyDebtPayments *float64 `json:"monthly_debt_payments"`
	LoanAmount          *float64 `json:"loan_amount"`
	MissedInstallments  *int     `json:"missed_installments"`
	CreditCardBalance   *float64 `json:"credit_card_balance"`
	TotalOpenAccounts   *int     `json:"total_open_accounts"`
	HomeOwnership       *string  `json:"home_ownership"`
}

// Params checks every field is present and returns the raw applicant attributes.
func (r AssessApplicantRequest) Params() (model.ApplicantParams, error) {
	var errs []error
	missing := func(field string) {
		errs = append(errs, model.NewValidationError(field, "field required"))
	}

	var p model.ApplicantParams
	if r.MonthlyIncome == nil {
		missing(model.FieldMonthlyIncome)
	} else {
		p.MonthlyIncome = *r.MonthlyIncome
	}
	if r.MonthlyDebtPayments == nil {
		missing(model.FieldMonthlyDebtPayments)
	} else {
		p.MonthlyDebtPayments = *r.MonthlyDebtPayments
	}
	if r.LoanAmount == nil {
		missing(model.FieldLoanAmount)
	} else {
		p.LoanAmount = *r.LoanAmount
	}
	if r.MissedInstallments == nil {
		missing(model.FieldMissedInstallments)
	} else {
		p.MissedInstallments = *r.MissedInstallments
	}
	if r.CreditCardBalance == nil {
		missing(model.FieldCreditCardBalance)
	} else {
		p.CreditCardBalance = *r.CreditCardBalance
	}
	if r.TotalOpenAccounts == nil {
		missing(model.FieldTotalOpenAccounts)
	} else {
		p.TotalOpenAccounts = *r.TotalOpenAccounts
	}
	if r.HomeOwnership == nil {
		missing(model.FieldHomeOwnership)
	} else {
		p.HomeOwnership = *r.HomeOwnership
	}

	if len(errs) > 0 {
		return model.ApplicantParams{}, errors.Join(errs...)
	}
	return p, nil
}

// RequestFromParams builds a fully populated request.
func RequestFromParams(p model.ApplicantParams) AssessApplicantRequest {
	return AssessApplicantRequest{
		MonthlyIncome:       &p.MonthlyIncome,
		MonthlyDebtPayments: &p.MonthlyDebtPayments,
		LoanAmount:          &p.LoanAmount,
		MissedInstallments:  &p.MissedInstallments,
		CreditCardBalance:   &p.CreditCardBalance,
		TotalOpenAccounts:   &p.TotalOpenAccounts,
		HomeOwnership:       &p.HomeOwnership,
	}
}

// RiskResponse is the public verdict returned to API clients.
type RiskResponse struct {
	RiskCategory       string  `json:"risk_category"`
	Color              string  `json:"color"`
	Message            string  `json:"message"`
	DefaultProbability float64 `json:"default_probability"`
}

// AssessmentResult is the output DTO of the AssessApplicant use case: the
// public response plus the engine details exposed to internal callers.
type AssessmentResult struct {
	AssessedAt          time.Time    `json:"assessed_at"`
	Category            string       `json:"category"`
	ModelVersion        string       `json:"model_version,omitempty"`
	Reasons             []string     `json:"reasons"`
	Response            RiskResponse `json:"response"`
	BaseProbability     float64      `json:"base_probability"`
	AdjustedProbability float64      `json:"adjusted_probability"`
	FinalProbability    float64      `json:"final_probability"`
	ID                  uuid.UUID    `json:"id"`
}

var hundred = decimal.NewFromInt(100)

// Percentage converts a probability into a percentage rounded to 2 decimals.
func Percentage(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Mul(hundred).Round(2)
}

// AssembleResponse renders an assessment as the public RiskResponse.
func AssembleResponse(a *model.RiskAssessment) RiskResponse {
	pct := Percentage(a.FinalProbability())

	msg := fmt.Sprintf("Estimated default risk is %s%%", pct.StringFixed(2))
	if reasons := a.Reasons(); len(reasons) > 0 {
		msg += ". Alerts: " + strings.Join(reasons, "; ")
	}

	return RiskResponse{
		DefaultProbability: pct.InexactFloat64(),
		RiskCategory:       a.Category().Label(),
		Color:              a.Category().Color(),
		Message:            msg,
	}
}

// FromModel maps a domain assessment to the use case result.
func FromModel(a *model.RiskAssessment, modelVersion string) AssessmentResult {
	return AssessmentResult{
		ID:                  a.ID(),
		Response:            AssembleResponse(a),
		BaseProbability:     a.BaseProbability(),
		AdjustedProbability: a.AdjustedProbability(),
		FinalProbability:    a.FinalProbability(),
		Category:            a.Category().String(),
		Reasons:             a.Reasons(),
		ModelVersion:        modelVersion,
		AssessedAt:          a.AssessedAt(),
	}
}

// ReloadModelResponse is the output DTO of the ReloadModel use case.
type ReloadModelResponse struct {
	ReloadedAt time.Time `json:"reloaded_at"`
	Version    string    `json:"version"`
}
