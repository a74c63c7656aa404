package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/suteetoe/repurpose/pkg/config"
)

// Token types carried in the "typ" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// UserClaims represents the JWT claims for user authentication.
// The subject is the user id.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user id
func (c *UserClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// TokenPair is what login hands back to the client
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: cfg,
		now:    time.Now,
	}
}

// GenerateAccessToken issues a short-lived access token
func (j *JWTUtil) GenerateAccessToken(userID uint, email string) (string, error) {
	return j.generate(userID, email, TokenTypeAccess, j.config.AccessTokenTTL)
}

// GenerateRefreshToken issues a long-lived refresh token
func (j *JWTUtil) GenerateRefreshToken(userID uint) (string, error) {
	return j.generate(userID, "", TokenTypeRefresh, j.config.RefreshTokenTTL)
}

// GeneratePair issues an access and a refresh token for the user
func (j *JWTUtil) GeneratePair(userID uint, email string) (*TokenPair, error) {
	access, err := j.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, err
	}
	refresh, err := j.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (j *JWTUtil) generate(userID uint, email, tokenType string, ttl time.Duration) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	now := j.now()
	claims := UserClaims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// ValidateToken validates and parses a token of the expected type
func (j *JWTUtil) ValidateToken(tokenString, expectedType string) (*UserClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expectedType {
		return nil, ErrWrongTokenType
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}
