package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fides/internal/token"
	"fides/pkg/requestcontext"
)

// MockTokenValidator is a testify mock for TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) Validate(tokenString string) (*token.Claims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*token.Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	validator := new(MockTokenValidator)
	handler := RequireAuth(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	validator.AssertNotCalled(t, "Validate")
}

func TestRequireAuthInvalidToken(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("Validate", "bad-token").Return(nil, errors.New("invalid token"))

	handler := RequireAuth(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	validator.AssertExpectations(t)
}

func TestRequireAuthStoresPrincipalInContext(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("Validate", "good-token").Return(&token.Claims{
		CustomerID: "c-123",
		Email:      "ana@example.com",
		Role:       token.RoleCustomer,
	}, nil)

	var called bool
	handler := RequireAuth(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		ctx := r.Context()
		assert.Equal(t, "c-123", GetCustomerID(ctx))
		assert.Equal(t, "ana@example.com", GetEmail(ctx))
		assert.Equal(t, token.RoleCustomer, GetRole(ctx))
		assert.Equal(t, "ana@example.com", requestcontext.Actor(ctx))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsMismatch(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("Validate", "customer-token").Return(&token.Claims{
		Email: "ana@example.com",
		Role:  token.RoleCustomer,
	}, nil)

	chain := RequireAuth(validator, discardLogger())(
		RequireRole(token.RoleAdmin, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/loans/x/approve", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")
}

func TestRequireRoleAllowsMatch(t *testing.T) {
	validator := new(MockTokenValidator)
	validator.On("Validate", "admin-token").Return(&token.Claims{
		Email: "admin@fides.test",
		Role:  token.RoleAdmin,
	}, nil)

	var called bool
	chain := RequireAuth(validator, discardLogger())(
		RequireRole(token.RoleAdmin, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/loans", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	require.True(t, called)
}
