package model

import (
	"errors"
	"math"

	"github.com/bibbank/credit-risk-service/internal/domain/valueobject"
)

// MinLoanAmount is the exclusive lower bound for a loan request.
const MinLoanAmount = 1000.0

// Wire names of the applicant fields, used in validation errors.
const (
	FieldMonthlyIncome       = "monthly_income"
	FieldMonthlyDebtPayments = "monthly_debt_payments"
	FieldLoanAmount          = "loan_amount"
	FieldMissedInstallments  = "missed_installments"
	FieldCreditCardBalance   = "credit_card_balance"
	FieldTotalOpenAccounts   = "total_open_accounts"
	FieldHomeOwnership       = "home_ownership"
)

// ApplicantParams carries the unvalidated applicant attributes.
type ApplicantParams struct {
	HomeOwnership       string
	MonthlyIncome       float64
	MonthlyDebtPayments float64
	LoanAmount          float64
	CreditCardBalance   float64
	MissedInstallments  int
	TotalOpenAccounts   int
}

// ApplicantInput is a validated loan applicant. It can only be obtained from
// NewApplicantInput, so every instance satisfies the field bounds.
type ApplicantInput struct {
	homeOwnership       valueobject.HomeOwnership
	monthlyIncome       float64
	monthlyDebtPayments float64
	loanAmount          float64
	creditCardBalance   float64
	missedInstallments  int
	totalOpenAccounts   int
}

// NewApplicantInput validates p and returns the applicant. All violations are
// reported, joined, each as a *ValidationError naming its field.
func NewApplicantInput(p ApplicantParams) (ApplicantInput, error) {
	var errs []error

	checkFloat := func(field string, v float64, ok bool, reason string) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, NewValidationError(field, "must be a finite number"))
		case !ok:
			errs = append(errs, NewValidationError(field, reason))
		}
	}

	checkFloat(FieldMonthlyIncome, p.MonthlyIncome, p.MonthlyIncome > 0, "must be greater than 0")
	checkFloat(FieldMonthlyDebtPayments, p.MonthlyDebtPayments, p.MonthlyDebtPayments >= 0, "must be greater than or equal to 0")
	checkFloat(FieldLoanAmount, p.LoanAmount, p.LoanAmount > MinLoanAmount, "must be greater than 1000")
	if p.MissedInstallments < 0 {
		errs = append(errs, NewValidationError(FieldMissedInstallments, "must be greater than or equal to 0"))
	}
	checkFloat(FieldCreditCardBalance, p.CreditCardBalance, p.CreditCardBalance >= 0, "must be greater than or equal to 0")
	if p.TotalOpenAccounts < 0 {
		errs = append(errs, NewValidationError(FieldTotalOpenAccounts, "must be greater than or equal to 0"))
	}

	home, err := valueobject.HomeOwnershipFromString(p.HomeOwnership)
	if err != nil {
		errs = append(errs, NewValidationError(FieldHomeOwnership, "must be one of RENT, MORTGAGE, OWN"))
	}

	if len(errs) > 0 {
		return ApplicantInput{}, errors.Join(errs...)
	}

	return ApplicantInput{
		homeOwnership:       home,
		monthlyIncome:       p.MonthlyIncome,
		monthlyDebtPayments: p.MonthlyDebtPayments,
		loanAmount:          p.LoanAmount,
		creditCardBalance:   p.CreditCardBalance,
		missedInstallments:  p.MissedInstallments,
		totalOpenAccounts:   p.TotalOpenAccounts,
	}, nil
}

// --- Accessors ---

func (a ApplicantInput) MonthlyIncome() float64                   { return a.monthlyIncome }
func (a ApplicantInput) MonthlyDebtPayments() float64             { return a.monthlyDebtPayments }
func (a ApplicantInput) LoanAmount() float64                      { return a.loanAmount }
func (a ApplicantInput) MissedInstallments() int                  { return a.missedInstallments }
func (a ApplicantInput) CreditCardBalance() float64               { return a.creditCardBalance }
func (a ApplicantInput) TotalOpenAccounts() int                   { return a.totalOpenAccounts }
func (a ApplicantInput) HomeOwnership() valueobject.HomeOwnership { return a.homeOwnership }

// DisposableIncome is monthly income minus monthly debt payments. It may be negative.
func (a ApplicantInput) DisposableIncome() float64 {
	return a.monthlyIncome - a.monthlyDebtPayments
}
