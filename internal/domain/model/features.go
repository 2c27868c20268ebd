package model

import "github.com/bibbank/credit-risk-service/internal/domain/valueobject"

// Feature names as understood by scoring models, in canonical order.
const (
	FeatureLoanAmount       = "loan_amount"
	FeatureDebtToIncome     = "debt_to_income"
	FeatureDelinquency      = "delinquency_two_years"
	FeatureRevolvingBalance = "revolving_balance"
	FeatureOpenAccounts     = "open_accounts"
	FeatureHomeOwnership    = "home_ownership"
)

// NumericFeatureNames lists the numeric features in the order of NormalizedFeatures.Numeric.
var NumericFeatureNames = []string{
	FeatureLoanAmount,
	FeatureDebtToIncome,
	FeatureDelinquency,
	FeatureRevolvingBalance,
	FeatureOpenAccounts,
}

// NormalizedFeatures is the fixed feature vector handed to a scoring oracle.
type NormalizedFeatures struct {
	homeOwnership       valueobject.HomeOwnership
	loanAmount          float64
	debtToIncomePercent float64
	creditCardBalance   float64
	missedInstallments  int
	totalOpenAccounts   int
}

// NewNormalizedFeatures builds a feature vector from already derived values.
func NewNormalizedFeatures(
	loanAmount float64,
	debtToIncomePercent float64,
	missedInstallments int,
	creditCardBalance float64,
	totalOpenAccounts int,
	homeOwnership valueobject.HomeOwnership,
) NormalizedFeatures {
	return NormalizedFeatures{
		homeOwnership:       homeOwnership,
		loanAmount:          loanAmount,
		debtToIncomePercent: debtToIncomePercent,
		creditCardBalance:   creditCardBalance,
		missedInstallments:  missedInstallments,
		totalOpenAccounts:   totalOpenAccounts,
	}
}

func (f NormalizedFeatures) LoanAmount() float64                      { return f.loanAmount }
func (f NormalizedFeatures) DebtToIncomePercent() float64             { return f.debtToIncomePercent }
func (f NormalizedFeatures) MissedInstallments() int                  { return f.missedInstallments }
func (f NormalizedFeatures) CreditCardBalance() float64               { return f.creditCardBalance }
func (f NormalizedFeatures) TotalOpenAccounts() int                   { return f.totalOpenAccounts }
func (f NormalizedFeatures) HomeOwnership() valueobject.HomeOwnership { return f.homeOwnership }

// Numeric returns the numeric features ordered as NumericFeatureNames.
func (f NormalizedFeatures) Numeric() []float64 {
	return []float64{
		f.loanAmount,
		f.debtToIncomePercent,
		float64(f.missedInstallments),
		f.creditCardBalance,
		float64(f.totalOpenAccounts),
	}
}

// Map returns the six features keyed by feature name.
func (f NormalizedFeatures) Map() map[string]any {
	return map[string]any{
		FeatureLoanAmount:       f.loanAmount,
		FeatureDebtToIncome:     f.debtToIncomePercent,
		FeatureDelinquency:      f.missedInstallments,
		FeatureRevolvingBalance: f.creditCardBalance,
		FeatureOpenAccounts:     f.totalOpenAccounts,
		FeatureHomeOwnership:    f.homeOwnership.String(),
	}
}
