package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/credit-risk-service/internal/application/usecase"
	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/internal/domain/service"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/messaging"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/oracle"
	"github.com/bibbank/credit-risk-service/internal/infrastructure/telemetry"
	"github.com/bibbank/credit-risk-service/pkg/auth"
	"github.com/bibbank/credit-risk-service/pkg/testutil"
)

// --- Mock implementations ---

type failingOracle struct {
	err error
}

func (o failingOracle) PredictProba(context.Context, model.NormalizedFeatures) ([2]float64, error) {
	return [2]float64{}, o.err
}

type stubReloader struct {
	version string
	err     error
}

func (r stubReloader) Reload(context.Context) (string, error) {
	return r.version, r.err
}

// --- Helpers ---

func buildHandler(o interface {
	PredictProba(context.Context, model.NormalizedFeatures) ([2]float64, error)
}, reloader *stubReloader, authEnabled bool) *CreditRiskHandler {
	logger := testutil.DiscardLogger()
	var reload *usecase.ReloadModel
	if reloader != nil {
		reload = usecase.NewReloadModel(reloader, logger)
	} else {
		reload = usecase.NewReloadModel(nil, logger)
	}
	return NewCreditRiskHandler(
		usecase.NewAssessApplicant(o, service.NewAdjustmentEngine(), messaging.NewLogPublisher(logger), telemetry.NopRecorder{}, logger),
		reload,
		logger,
		authEnabled,
	)
}

func requestFrom(p model.ApplicantParams) *AssessApplicantRequest {
	missed, open := int32(p.MissedInstallments), int32(p.TotalOpenAccounts)
	return &AssessApplicantRequest{
		MonthlyIncome:       &p.MonthlyIncome,
		MonthlyDebtPayments: &p.MonthlyDebtPayments,
		LoanAmount:          &p.LoanAmount,
		MissedInstallments:  &missed,
		CreditCardBalance:   &p.CreditCardBalance,
		TotalOpenAccounts:   &open,
		HomeOwnership:       &p.HomeOwnership,
	}
}

func requireGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got %v", err)
	assert.Equal(t, code, st.Code(), "unexpected code, message: %s", st.Message())
}

// --- Tests ---

func TestAssessApplicant(t *testing.T) {
	t.Run("scenario B is high risk", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(testutil.ScenarioBBase, testutil.DiscardLogger()), nil, false)

		resp, err := h.AssessApplicant(context.Background(), requestFrom(testutil.ScenarioB))
		require.NoError(t, err)
		assert.Equal(t, "High Risk", resp.RiskCategory)
		assert.Equal(t, "HIGH", resp.Category)
		assert.Equal(t, "red", resp.Color)
		assert.Equal(t, 80.0, resp.DefaultProbability)
		assert.Equal(t, "static", resp.ModelVersion)
		assert.Equal(t,
			"Estimated default risk is 80.00%. Alerts: Recent missed installment detected.; High Risk combination: Renting with delinquency.",
			resp.Message)
		assert.NotEmpty(t, resp.AssessmentID)
	})

	t.Run("nil request returns InvalidArgument", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), nil, false)
		_, err := h.AssessApplicant(context.Background(), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("validation failures list every field", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), nil, false)
		req := requestFrom(testutil.ScenarioA)
		loan, home := 10.0, "LEASE"
		req.LoanAmount = &loan
		req.HomeOwnership = &home
		req.TotalOpenAccounts = nil

		_, err := h.AssessApplicant(context.Background(), req)
		requireGRPCCode(t, err, codes.InvalidArgument)

		st, _ := status.FromError(err)
		var fields []string
		for _, d := range st.Details() {
			if br, ok := d.(*errdetails.BadRequest); ok {
				for _, v := range br.GetFieldViolations() {
					fields = append(fields, v.GetField())
				}
			}
		}
		assert.Contains(t, fields, model.FieldTotalOpenAccounts)
		assert.Contains(t, st.Message(), model.FieldTotalOpenAccounts)
	})

	t.Run("oracle unavailable maps to Unavailable", func(t *testing.T) {
		h := buildHandler(failingOracle{err: model.NewOracleUnavailableError("model not loaded", nil)}, nil, false)
		_, err := h.AssessApplicant(context.Background(), requestFrom(testutil.ScenarioA))
		requireGRPCCode(t, err, codes.Unavailable)
	})

	t.Run("scoring failure maps to Internal with cause", func(t *testing.T) {
		h := buildHandler(failingOracle{err: errors.New("feature shape mismatch")}, nil, false)
		_, err := h.AssessApplicant(context.Background(), requestFrom(testutil.ScenarioA))
		requireGRPCCode(t, err, codes.Internal)
		assert.Contains(t, err.Error(), "Prediction Error: feature shape mismatch")
	})

	t.Run("auth enabled requires a role", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), nil, true)

		_, err := h.AssessApplicant(context.Background(), requestFrom(testutil.ScenarioA))
		requireGRPCCode(t, err, codes.Unauthenticated)

		ctx := auth.ContextWithClaims(context.Background(), &auth.Claims{Roles: []string{"auditor"}})
		_, err = h.AssessApplicant(ctx, requestFrom(testutil.ScenarioA))
		requireGRPCCode(t, err, codes.PermissionDenied)

		ctx = auth.ContextWithClaims(context.Background(), &auth.Claims{Roles: []string{auth.RoleAPIClient}})
		_, err = h.AssessApplicant(ctx, requestFrom(testutil.ScenarioA))
		require.NoError(t, err)
	})
}

func TestReloadModel(t *testing.T) {
	t.Run("returns the new version", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), &stubReloader{version: "logit-v9"}, false)
		resp, err := h.ReloadModel(context.Background(), &ReloadModelRequest{})
		require.NoError(t, err)
		assert.Equal(t, "logit-v9", resp.Version)
		assert.NotEmpty(t, resp.ReloadedAt)
	})

	t.Run("unsupported reload", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), nil, false)
		_, err := h.ReloadModel(context.Background(), &ReloadModelRequest{})
		requireGRPCCode(t, err, codes.FailedPrecondition)
	})

	t.Run("reload failure", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), &stubReloader{err: errors.New("no active scoring model")}, false)
		_, err := h.ReloadModel(context.Background(), &ReloadModelRequest{})
		requireGRPCCode(t, err, codes.Internal)
	})

	t.Run("api clients may not reload", func(t *testing.T) {
		h := buildHandler(oracle.NewStaticOracle(0.1, testutil.DiscardLogger()), &stubReloader{version: "v"}, true)
		ctx := auth.ContextWithClaims(context.Background(), &auth.Claims{Roles: []string{auth.RoleAPIClient}})
		_, err := h.ReloadModel(ctx, &ReloadModelRequest{})
		requireGRPCCode(t, err, codes.PermissionDenied)
	})
}

func TestServer_EndToEnd(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "grpc-test", Issuer: "bib", Expiration: time.Minute})
	require.NoError(t, err)

	h := buildHandler(oracle.NewStaticOracle(testutil.ScenarioCBase, testutil.DiscardLogger()), nil, true)
	srv, err := NewServer(h, ServerConfig{}, jwtSvc, testutil.DiscardLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	health, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.GetStatus())

	var resp AssessApplicantResponse
	err = conn.Invoke(context.Background(), AssessApplicantMethod, requestFrom(testutil.ScenarioC), &resp,
		grpclib.CallContentSubtype("json"))
	requireGRPCCode(t, err, codes.Unauthenticated)

	token, err := jwtSvc.GenerateToken("loan-origination", []string{auth.RoleAPIClient})
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)

	err = conn.Invoke(ctx, AssessApplicantMethod, requestFrom(testutil.ScenarioC), &resp,
		grpclib.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, "HIGH", resp.Category)
	assert.InDelta(t, 0.90, resp.FinalProbability, testutil.ProbabilityDelta)
	assert.Equal(t, "Estimated default risk is 90.00%. Alerts: Critical: Extremely low disposable income.", resp.Message)

	mistyped := map[string]any{
		"monthly_income":        5000.0,
		"monthly_debt_payments": 1000.0,
		"loan_amount":           10000.0,
		"missed_installments":   1.5,
		"credit_card_balance":   500.0,
		"total_open_accounts":   3,
		"home_ownership":        "OWN",
	}
	err = conn.Invoke(ctx, AssessApplicantMethod, mistyped, &resp, grpclib.CallContentSubtype("json"))
	requireGRPCCode(t, err, codes.InvalidArgument)

	st, _ := status.FromError(err)
	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, br.GetFieldViolations(), 1)
	assert.Equal(t, "missed_installments", br.GetFieldViolations()[0].GetField())
}

func TestAssessApplicantRequest_UnmarshalJSON(t *testing.T) {
	t.Run("well typed request decodes", func(t *testing.T) {
		var req AssessApplicantRequest
		require.NoError(t, json.Unmarshal([]byte(`{"missed_installments":2,"home_ownership":"RENT"}`), &req))
		require.NotNil(t, req.MissedInstallments)
		assert.Equal(t, int32(2), *req.MissedInstallments)
		assert.Nil(t, req.typeErr)
	})

	t.Run("mistyped field becomes a validation error", func(t *testing.T) {
		var req AssessApplicantRequest
		require.NoError(t, json.Unmarshal([]byte(`{"total_open_accounts":"three","home_ownership":"OWN"}`), &req))
		require.NotNil(t, req.typeErr)
		assert.Equal(t, "total_open_accounts", req.typeErr.Field)
		assert.ErrorIs(t, req.typeErr, model.ErrValidation)
		require.NotNil(t, req.HomeOwnership)
		assert.Equal(t, "OWN", *req.HomeOwnership)
	})

	t.Run("malformed JSON still fails", func(t *testing.T) {
		var req AssessApplicantRequest
		assert.Error(t, json.Unmarshal([]byte(`{"loan_amount":`), &req))
	})
}
