package service

import "github.com/bibbank/credit-risk-service/internal/domain/model"

// Normalize maps a validated applicant onto the feature vector the scoring
// oracle expects. Debt-to-income is a percentage and falls back to 0 when
// income is not positive.
func Normalize(in model.ApplicantInput) model.NormalizedFeatures {
	dti := 0.0
	if in.MonthlyIncome() > 0 {
		dti = (in.MonthlyDebtPayments() / in.MonthlyIncome()) * 100
	}

	return model.NewNormalizedFeatures(
		in.LoanAmount(),
		dti,
		in.MissedInstallments(),
		in.CreditCardBalance(),
		in.TotalOpenAccounts(),
		in.HomeOwnership(),
	)
}
