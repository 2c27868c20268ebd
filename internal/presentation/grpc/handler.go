package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/credit-risk-service/internal/application/dto"
	"github.com/bibbank/credit-risk-service/internal/application/usecase"
	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/pkg/auth"
)

// Compile-time assertion that CreditRiskHandler implements CreditRiskServiceServer.
var _ CreditRiskServiceServer = (*CreditRiskHandler)(nil)

// CreditRiskHandler implements the gRPC CreditRiskServiceServer interface.
type CreditRiskHandler struct {
	UnimplementedCreditRiskServiceServer
	assessApplicant *usecase.AssessApplicant
	reloadModel     *usecase.ReloadModel
	logger          *slog.Logger
	authEnabled     bool
}

// NewCreditRiskHandler creates a new gRPC handler. With authEnabled set every
// call must carry claims with a suitable role.
func NewCreditRiskHandler(
	assessApplicant *usecase.AssessApplicant,
	reloadModel *usecase.ReloadModel,
	logger *slog.Logger,
	authEnabled bool,
) *CreditRiskHandler {
	return &CreditRiskHandler{
		assessApplicant: assessApplicant,
		reloadModel:     reloadModel,
		logger:          logger,
		authEnabled:     authEnabled,
	}
}

// Proto-aligned request/response message types.

// AssessApplicantRequest represents the proto AssessApplicantRequest message.
// Every field is proto3 optional so that missing attributes are reported.
type AssessApplicantRequest struct {
	MonthlyIncome       *float64 `json:"monthly_income"`
	MonthlyDebtPayments *float64 `json:"monthly_debt_payments"`
	LoanAmount          *float64 `json:"loan_amount"`
	MissedInstallments  *int32   `json:"missed_installments"`
	CreditCardBalance   *float64 `json:"credit_card_balance"`
	TotalOpenAccounts   *int32   `json:"total_open_accounts"`
	HomeOwnership       *string  `json:"home_ownership"`

	// typeErr records a field whose JSON value had the wrong type.
	typeErr *model.ValidationError
}

// UnmarshalJSON decodes the request, keeping a field with a mistyped value as
// a validation failure instead of failing the whole call in the codec.
func (r *AssessApplicantRequest) UnmarshalJSON(data []byte) error {
	type plain AssessApplicantRequest
	var p plain

	err := json.Unmarshal(data, &p)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return err
	}

	*r = AssessApplicantRequest(p)
	if typeErr != nil {
		r.typeErr = model.NewValidationError(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
	}
	return nil
}

// AssessApplicantResponse represents the proto AssessApplicantResponse message.
type AssessApplicantResponse struct {
	AssessmentID       string   `json:"assessment_id"`
	RiskCategory       string   `json:"risk_category"`
	Category           string   `json:"category"`
	Color              string   `json:"color"`
	Message            string   `json:"message"`
	ModelVersion       string   `json:"model_version"`
	AssessedAt         string   `json:"assessed_at"`
	Reasons            []string `json:"reasons"`
	DefaultProbability float64  `json:"default_probability"`
	BaseProbability    float64  `json:"base_probability"`
	FinalProbability   float64  `json:"final_probability"`
}

// ReloadModelRequest represents the proto ReloadModelRequest message.
type ReloadModelRequest struct{}

// ReloadModelResponse represents the proto ReloadModelResponse message.
type ReloadModelResponse struct {
	Version    string `json:"version"`
	ReloadedAt string `json:"reloaded_at"`
}

// AssessApplicant handles an applicant assessment request.
func (h *CreditRiskHandler) AssessApplicant(ctx context.Context, req *AssessApplicantRequest) (*AssessApplicantResponse, error) {
	if err := h.authorize(ctx, auth.RoleAdmin, auth.RoleOperator, auth.RoleAPIClient); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.typeErr != nil {
		return nil, h.toStatus(req.typeErr)
	}

	result, err := h.assessApplicant.Execute(ctx, req.toDTO())
	if err != nil {
		return nil, h.toStatus(err)
	}

	return &AssessApplicantResponse{
		AssessmentID:       result.ID.String(),
		RiskCategory:       result.Response.RiskCategory,
		Category:           result.Category,
		Color:              result.Response.Color,
		Message:            result.Response.Message,
		ModelVersion:       result.ModelVersion,
		AssessedAt:         result.AssessedAt.Format(time.RFC3339Nano),
		Reasons:            result.Reasons,
		DefaultProbability: result.Response.DefaultProbability,
		BaseProbability:    result.BaseProbability,
		FinalProbability:   result.FinalProbability,
	}, nil
}

// ReloadModel swaps in the active model artifact.
func (h *CreditRiskHandler) ReloadModel(ctx context.Context, _ *ReloadModelRequest) (*ReloadModelResponse, error) {
	if err := h.authorize(ctx, auth.RoleAdmin, auth.RoleOperator); err != nil {
		return nil, err
	}

	result, err := h.reloadModel.Execute(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrReloadUnsupported) {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
		h.logger.Error("failed to reload model", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &ReloadModelResponse{
		Version:    result.Version,
		ReloadedAt: result.ReloadedAt.Format(time.RFC3339Nano),
	}, nil
}

func (h *CreditRiskHandler) authorize(ctx context.Context, roles ...string) error {
	if !h.authEnabled {
		return nil
	}
	return auth.RequireRole(ctx, roles...)
}

// toStatus maps use case failures to gRPC status codes. Validation failures
// carry a BadRequest detail listing each offending field.
func (h *CreditRiskHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrValidation):
		violations := model.ValidationErrors(err)
		msgs := make([]string, 0, len(violations))
		br := &errdetails.BadRequest{}
		for _, v := range violations {
			msgs = append(msgs, v.Error())
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Field,
				Description: v.Reason,
			})
		}
		st := status.New(codes.InvalidArgument, strings.Join(msgs, "; "))
		if detailed, derr := st.WithDetails(br); derr == nil {
			st = detailed
		}
		return st.Err()

	case errors.Is(err, model.ErrOracleUnavailable):
		return status.Error(codes.Unavailable, err.Error())

	default:
		var scoringErr *model.ScoringError
		if errors.As(err, &scoringErr) {
			return status.Error(codes.Internal, "Prediction Error: "+scoringErr.Error())
		}
		h.logger.Error("unexpected assessment failure", slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

func (r *AssessApplicantRequest) toDTO() dto.AssessApplicantRequest {
	out := dto.AssessApplicantRequest{
		MonthlyIncome:       r.MonthlyIncome,
		MonthlyDebtPayments: r.MonthlyDebtPayments,
		LoanAmount:          r.LoanAmount,
		CreditCardBalance:   r.CreditCardBalance,
		HomeOwnership:       r.HomeOwnership,
	}
	if r.MissedInstallments != nil {
		v := int(*r.MissedInstallments)
		out.MissedInstallments = &v
	}
	if r.TotalOpenAccounts != nil {
		v := int(*r.TotalOpenAccounts)
		out.TotalOpenAccounts = &v
	}
	return out
}
