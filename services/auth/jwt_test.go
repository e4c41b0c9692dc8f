package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurum-payment-api/models"
)

func newTestService() *JWTService {
	return NewJWTService("test-secret", "aurum-test", nil)
}

func TestValidateTokenCarriesActiveFlag(t *testing.T) {
	svc := newTestService()

	inactive := &models.AuthUser{BusinessID: 7, Email: "dormant@example.com", IsActive: false}
	tokenStr, err := svc.generateToken(inactive, "access", AccessTokenDuration)
	require.NoError(t, err)

	user, err := svc.ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.BusinessID)
	assert.False(t, user.IsActive, "inactive business must not validate as active")

	active := &models.AuthUser{BusinessID: 8, Email: "live@example.com", IsActive: true}
	tokenStr, err = svc.generateToken(active, "access", AccessTokenDuration)
	require.NoError(t, err)

	user, err = svc.ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

func TestValidateTokenRejectsRefreshToken(t *testing.T) {
	svc := newTestService()

	user := &models.AuthUser{BusinessID: 9, Email: "biz@example.com", IsActive: true}
	tokenStr, err := svc.generateToken(user, "refresh", RefreshTokenDuration)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestService()

	user := &models.AuthUser{BusinessID: 10, Email: "biz@example.com", IsActive: true}
	tokenStr, err := svc.generateToken(user, "access", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenStr)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := newTestService()
	other := NewJWTService("different-secret", "aurum-test", nil)

	user := &models.AuthUser{BusinessID: 11, Email: "biz@example.com", IsActive: true}
	tokenStr, err := issuer.generateToken(user, "access", AccessTokenDuration)
	require.NoError(t, err)

	_, err = other.ValidateToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
