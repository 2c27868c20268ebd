package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
)

// ProbabilityDelta is the tolerance used when comparing probabilities.
const ProbabilityDelta = 1e-9

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// MustApplicant builds a validated applicant or fails the test.
func MustApplicant(t *testing.T, p model.ApplicantParams) model.ApplicantInput {
	t.Helper()
	in, err := model.NewApplicantInput(p)
	require.NoError(t, err)
	return in
}

// AssertValidationField checks that err is a validation failure naming field.
func AssertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	require.ErrorIs(t, err, model.ErrValidation)

	fields := make([]string, 0)
	for _, ve := range model.ValidationErrors(err) {
		fields = append(fields, ve.Field)
	}
	assert.Contains(t, fields, field)
}
