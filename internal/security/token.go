package security

import (
	"strings"
	"time"

	"github.com/accounthub/apiserver/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens. A token of one
// type is never accepted where the other is expected.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenConfig is the immutable configuration for a Codec. The secret and
// lifetimes are injected at construction; nothing is read from ambient state.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec signs and verifies compact, expiring, typed bearer tokens. Tokens are
// stateless: validity is fully determined by their own signed contents.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Claims is the signed token payload: subject, expiry, and token type.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// NewCodec constructs a Codec from the given configuration.
func NewCodec(cfg TokenConfig) *Codec {
	return &Codec{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// Issue signs a token for the subject using the default lifetime for the type.
func (c *Codec) Issue(subject string, typ TokenType) (string, error) {
	ttl := c.accessTTL
	if typ == TokenRefresh {
		ttl = c.refreshTTL
	}
	return c.IssueWithTTL(subject, typ, ttl)
}

// IssueWithTTL signs a token for the subject with an explicit lifetime.
func (c *Codec) IssueWithTTL(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Type: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", apperr.ErrInvalidToken.WithMessage(err.Error())
	}
	return signed, nil
}

// Verify checks signature, subject, type, and expiry, in that order, and
// returns the subject. Ordering matters: an expired token of the wrong type
// reports apperr.ErrInvalidToken, not apperr.ErrTokenExpired. Expiry is
// compared in UTC at second granularity, and the boundary instant itself
// counts as expired.
func (c *Codec) Verify(tokenString string, expected TokenType) (string, error) {
	claims := Claims{}
	// Claims validation is manual so the type check runs before the
	// expiry check.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return "", apperr.ErrInvalidToken
	}
	if claims.Type != string(expected) {
		return "", apperr.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return "", apperr.ErrInvalidToken
	}
	if claims.ExpiresAt.Unix() <= time.Now().UTC().Unix() {
		return "", apperr.ErrTokenExpired
	}
	return claims.Subject, nil
}
