package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-risk-service/internal/application/dto"
	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/pkg/testutil"
)

func TestAssembleResponse(t *testing.T) {
	tests := []struct {
		name     string
		final    float64
		reasons  []string
		pct      float64
		category string
		color    string
		message  string
	}{
		{
			name:     "low risk without alerts",
			final:    0.10,
			pct:      10,
			category: "Low Risk",
			color:    "green",
			message:  "Estimated default risk is 10.00%",
		},
		{
			name:     "float noise is rounded away",
			final:    0.6000000000000001,
			pct:      60,
			category: "High Risk",
			color:    "red",
			message:  "Estimated default risk is 60.00%",
		},
		{
			name:     "medium with one alert",
			final:    0.45678,
			reasons:  []string{"Warning: Low disposable income."},
			pct:      45.68,
			category: "Medium Risk",
			color:    "#ffcc00",
			message:  "Estimated default risk is 45.68%. Alerts: Warning: Low disposable income.",
		},
		{
			name:  "high with several alerts joined in order",
			final: 0.80,
			reasons: []string{
				"Recent missed installment detected.",
				"High Risk combination: Renting with delinquency.",
			},
			pct:      80,
			category: "High Risk",
			color:    "red",
			message: "Estimated default risk is 80.00%. Alerts: Recent missed installment detected.; " +
				"High Risk combination: Renting with delinquency.",
		},
		{
			name:     "clamp ceiling",
			final:    0.99,
			reasons:  []string{"Critical: 3 missed installments."},
			pct:      99,
			category: "High Risk",
			color:    "red",
			message:  "Estimated default risk is 99.00%. Alerts: Critical: 3 missed installments.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := model.NewRiskAssessment(tt.final, tt.final, tt.final, tt.reasons)

			resp := dto.AssembleResponse(a)

			assert.Equal(t, tt.pct, resp.DefaultProbability)
			assert.Equal(t, tt.category, resp.RiskCategory)
			assert.Equal(t, tt.color, resp.Color)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "30.00", dto.Percentage(0.3).StringFixed(2))
	assert.Equal(t, "0.00", dto.Percentage(0).StringFixed(2))
	assert.Equal(t, "12.35", dto.Percentage(0.123456).StringFixed(2))
}

func TestAssessApplicantRequest_Params(t *testing.T) {
	req := dto.RequestFromParams(testutil.ScenarioB)

	p, err := req.Params()
	require.NoError(t, err)
	assert.Equal(t, testutil.ScenarioB, p)
}

func TestAssessApplicantRequest_MissingFields(t *testing.T) {
	income := 4000.0
	home := "RENT"
	req := dto.AssessApplicantRequest{MonthlyIncome: &income, HomeOwnership: &home}

	_, err := req.Params()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	fields := make([]string, 0)
	for _, ve := range model.ValidationErrors(err) {
		assert.Equal(t, "field required", ve.Reason)
		fields = append(fields, ve.Field)
	}
	assert.Equal(t, []string{
		model.FieldMonthlyDebtPayments,
		model.FieldLoanAmount,
		model.FieldMissedInstallments,
		model.FieldCreditCardBalance,
		model.FieldTotalOpenAccounts,
	}, fields)
}

func TestFromModel(t *testing.T) {
	a := model.NewRiskAssessment(0.1, 0.6, 0.6, []string{"x"})

	res := dto.FromModel(a, "logit-v1")

	assert.Equal(t, a.ID(), res.ID)
	assert.Equal(t, "MEDIUM", res.Category)
	assert.Equal(t, "Medium Risk", res.Response.RiskCategory)
	assert.Equal(t, []string{"x"}, res.Reasons)
	assert.Equal(t, "logit-v1", res.ModelVersion)
	assert.Equal(t, 0.1, res.BaseProbability)
}
