package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryAuthInterceptor(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.GenerateToken("svc", []string{RoleOperator})
	require.NoError(t, err)

	interceptor := UnaryAuthInterceptor(svc, []string{"/grpc.health.v1.Health/Check"})
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			return "anonymous", nil
		}
		return claims.Subject, nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/bib.creditrisk.v1.CreditRiskService/AssessApplicant"}

	t.Run("valid bearer token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
		resp, err := interceptor(ctx, nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "svc", resp)
	})

	t.Run("missing metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("missing header", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-other", "1"))
		_, err := interceptor(ctx, nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("invalid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer garbage"))
		_, err := interceptor(ctx, nil, info, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("skipped method", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		require.NoError(t, err)
		assert.Equal(t, "anonymous", resp)
	})
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, codes.Unauthenticated, status.Code(RequireRole(context.Background(), RoleAdmin)))

	ctx := ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleAPIClient}})
	assert.Equal(t, codes.PermissionDenied, status.Code(RequireRole(ctx, RoleAdmin, RoleOperator)))

	ctx = ContextWithClaims(context.Background(), &Claims{Roles: []string{RoleOperator}})
	assert.NoError(t, RequireRole(ctx, RoleAdmin, RoleOperator))
}

func TestHTTPMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	token, err := svc.GenerateToken("svc", []string{RoleAPIClient})
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			_, _ = w.Write([]byte(claims.Subject))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})
	h := HTTPMiddleware(svc, "/healthz")(next)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", path: "/predict", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "svc"},
		{name: "missing header", path: "/predict", wantStatus: http.StatusUnauthorized},
		{name: "bad token", path: "/predict", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "skipped path", path: "/healthz", wantStatus: http.StatusOK, wantBody: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}
