package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum-payment-api/services/auth"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, businessID int64, isActive bool) string {
	t.Helper()

	claims := auth.Claims{
		BusinessID: businessID,
		Email:      "biz@example.com",
		IsActive:   isActive,
		TokenType:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tokenStr
}

func protectedChain() http.Handler {
	jwtService := auth.NewJWTService(testSecret, "aurum-test", nil)
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(jwtService)(RequireActiveBusiness()(final))
}

func TestRequireActiveBusinessBlocksInactive(t *testing.T) {
	handler := protectedChain()

	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 42, false))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireActiveBusinessAllowsActive(t *testing.T) {
	handler := protectedChain()

	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, 42, true))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler := protectedChain()

	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
