// Package auth provides password hashing and JWT-based authentication for
// the audit API. Tokens are signed with HMAC-SHA256 using the configured
// shared secret.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cvpa-audit/internal/config"
	"github.com/sells-group/cvpa-audit/internal/model"
)

// ErrInvalidToken is returned for malformed, forged, or expired tokens.
var ErrInvalidToken = eris.New("auth: invalid or expired token")

// Claims extends jwt.RegisteredClaims with the authenticated user's identity.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// JWTManager issues and validates user tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager creates a JWTManager from config. The secret is mandatory;
// a default TTL of 24h applies when token_ttl_hours is unset.
func NewJWTManager(cfg config.AuthConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, eris.New("auth: jwt_secret is not configured")
	}
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(cfg.JWTSecret), ttl: ttl}, nil
}

// IssueToken creates a signed JWT for the given user.
func (m *JWTManager) IssueToken(user *model.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(m.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "cvpa-audit",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.New().String(),
		},
		Email: user.Email,
		Role:  user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "auth: sign token")
	}
	return signed, exp, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
