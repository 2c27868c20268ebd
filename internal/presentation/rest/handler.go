package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bibbank/credit-risk-service/internal/application/dto"
	"github.com/bibbank/credit-risk-service/internal/application/usecase"
	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/pkg/auth"
)

const maxBodyBytes = 64 << 10

// AssessmentHandler serves the assessment and model administration routes.
type AssessmentHandler struct {
	assessApplicant *usecase.AssessApplicant
	reloadModel     *usecase.ReloadModel
	logger          *slog.Logger
	authEnabled     bool
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(
	assessApplicant *usecase.AssessApplicant,
	reloadModel *usecase.ReloadModel,
	logger *slog.Logger,
	authEnabled bool,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessApplicant: assessApplicant,
		reloadModel:     reloadModel,
		logger:          logger,
		authEnabled:     authEnabled,
	}
}

// Predict handles POST /predict and returns the public verdict only.
func (h *AssessmentHandler) Predict(w http.ResponseWriter, r *http.Request) {
	result, ok := h.assess(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result.Response)
}

// CreateAssessment handles POST /v1/assessments and returns the full result.
func (h *AssessmentHandler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	result, ok := h.assess(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ReloadModel handles POST /v1/models/reload.
func (h *AssessmentHandler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	if h.authEnabled {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || !claims.HasAnyRole(auth.RoleAdmin, auth.RoleOperator) {
			writeError(w, http.StatusForbidden, "admin or operator role required")
			return
		}
	}

	result, err := h.reloadModel.Execute(r.Context())
	switch {
	case errors.Is(err, usecase.ErrReloadUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	case err != nil:
		h.logger.Error("failed to reload model", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *AssessmentHandler) assess(w http.ResponseWriter, r *http.Request) (dto.AssessmentResult, bool) {
	req, err := decodeRequest(w, r)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Detail: ve.Error(),
				Fields: []FieldError{{Field: ve.Field, Reason: ve.Reason}},
			})
			return dto.AssessmentResult{}, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return dto.AssessmentResult{}, false
	}

	result, err := h.assessApplicant.Execute(r.Context(), req)
	if err != nil {
		h.writeFailure(w, err)
		return dto.AssessmentResult{}, false
	}
	return result, true
}

func (h *AssessmentHandler) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		violations := model.ValidationErrors(err)
		resp := ErrorResponse{Fields: make([]FieldError, 0, len(violations))}
		msgs := make([]string, 0, len(violations))
		for _, v := range violations {
			resp.Fields = append(resp.Fields, FieldError{Field: v.Field, Reason: v.Reason})
			msgs = append(msgs, v.Error())
		}
		resp.Detail = strings.Join(msgs, "; ")
		writeJSON(w, http.StatusUnprocessableEntity, resp)

	case errors.Is(err, model.ErrOracleUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())

	default:
		var scoringErr *model.ScoringError
		if errors.As(err, &scoringErr) {
			writeError(w, http.StatusInternalServerError, "Prediction Error: "+scoringErr.Error())
			return
		}
		h.logger.Error("unexpected assessment failure", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeRequest reads a JSON applicant. Type mismatches are reported as
// validation errors on the offending field.
func decodeRequest(w http.ResponseWriter, r *http.Request) (dto.AssessApplicantRequest, error) {
	var req dto.AssessApplicantRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &typeErr):
			return req, model.NewValidationError(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
		case errors.As(err, &maxErr):
			return req, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return req, errors.New("request body is empty")
		default:
			return req, fmt.Errorf("malformed JSON: %w", err)
		}
	}
	return req, nil
}
