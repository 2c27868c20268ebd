package testutil

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// TestAssessmentID is a fixed assessment ID for deterministic event tests.
var TestAssessmentID = uuid.MustParse("00000000-0000-0000-0000-000000000030")

// Reference applicants with well known outcomes.
var (
	// ScenarioA is a healthy home owner: base 0.10 stays 0.10, LOW, no reasons.
	ScenarioA = model.ApplicantParams{
		MonthlyIncome:       5000,
		MonthlyDebtPayments: 1000,
		LoanAmount:          10000,
		MissedInstallments:  0,
		CreditCardBalance:   500,
		TotalOpenAccounts:   3,
		HomeOwnership:       "OWN",
	}

	// ScenarioB is a renter with one missed installment: base 0.10 ends at 0.80, HIGH.
	ScenarioB = model.ApplicantParams{
		MonthlyIncome:       5000,
		MonthlyDebtPayments: 1000,
		LoanAmount:          10000,
		MissedInstallments:  1,
		CreditCardBalance:   500,
		TotalOpenAccounts:   3,
		HomeOwnership:       "RENT",
	}

	// ScenarioC is ScenarioA with almost no disposable income: base 0.05 ends
	// at 0.90, HIGH.
	ScenarioC = model.ApplicantParams{
		MonthlyIncome:       1500,
		MonthlyDebtPayments: 1200,
		LoanAmount:          10000,
		MissedInstallments:  0,
		CreditCardBalance:   500,
		TotalOpenAccounts:   3,
		HomeOwnership:       "OWN",
	}
)

// Scenario base probabilities.
const (
	ScenarioABase = 0.10
	ScenarioBBase = 0.10
	ScenarioCBase = 0.05
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
