package auth

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"aurum-payment-api/database"
	"aurum-payment-api/models"
)

const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or passphrase")
	ErrBusinessInactive   = errors.New("business account inactive")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

type JWTService struct {
	secretKey []byte
	issuer    string
	db        *database.Connection
}

type Claims struct {
	BusinessID int64  `json:"business_id"`
	Email      string `json:"email"`
	IsActive   bool   `json:"is_active"`
	TokenType  string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string, db *database.Connection) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		db:        db,
	}
}

// Authenticate checks the business credentials and issues a token pair.
func (j *JWTService) Authenticate(email, passphrase string) (*models.AuthResponse, error) {
	hasher := sha256.New()
	hasher.Write([]byte(passphrase))
	hashed := hex.EncodeToString(hasher.Sum(nil))

	var user models.AuthUser
	query := `
        SELECT id, name, email, is_active
        FROM businesses
        WHERE email = ? AND passphrase = ?
    `

	err := j.db.GetDB().QueryRow(query, email, hashed).Scan(
		&user.BusinessID, &user.Name, &user.Email, &user.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %v", err)
	}

	if !user.IsActive {
		return nil, ErrBusinessInactive
	}

	accessToken, err := j.generateToken(&user, "access", AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %v", err)
	}

	refreshToken, err := j.generateToken(&user, "refresh", RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %v", err)
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenDuration.Seconds()),
		User:         user,
	}, nil
}

func (j *JWTService) generateToken(user *models.AuthUser, tokenType string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		BusinessID: user.BusinessID,
		Email:      user.Email,
		IsActive:   user.IsActive,
		TokenType:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("%d", user.BusinessID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// ValidateToken parses an access token and returns the authenticated user.
func (j *JWTService) ValidateToken(tokenString string) (*models.AuthUser, error) {
	claims, err := j.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != "access" {
		return nil, ErrInvalidToken
	}

	return &models.AuthUser{
		BusinessID: claims.BusinessID,
		Email:      claims.Email,
		IsActive:   claims.IsActive,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair, re-checking
// the business against the database.
func (j *JWTService) Refresh(refreshToken string) (*models.AuthResponse, error) {
	claims, err := j.parseClaims(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	var user models.AuthUser
	err = j.db.GetDB().QueryRow(
		`SELECT id, name, email, is_active FROM businesses WHERE id = ?`,
		claims.BusinessID).Scan(&user.BusinessID, &user.Name, &user.Email, &user.IsActive)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrBusinessInactive
	}

	accessToken, err := j.generateToken(&user, "access", AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %v", err)
	}

	newRefresh, err := j.generateToken(&user, "refresh", RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %v", err)
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(AccessTokenDuration.Seconds()),
		User:         user,
	}, nil
}

func (j *JWTService) parseClaims(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
