package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/insomniafuel/storefront-core/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// TokenClaims are the storefront-relevant claims carried by a bearer
// credential issued by the identity collaborator.
type TokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token names an admin operator.
func (c *TokenClaims) IsAdmin() bool {
	return strings.EqualFold(c.Role, "admin")
}

// Introspect decodes a bearer token WITHOUT verifying its signature.
// The identity provider is the authority on validity; this only
// extracts display and role data for the session object.
func Introspect(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding bearer token: %w", err)
	}
	return claims, nil
}

// IntrospectVerified parses and verifies the token against the shared
// secret; used where a secret is configured (local stacks, tests).
func IntrospectVerified(cfg config.JWTConfig, token string) (*TokenClaims, error) {
	if !cfg.VerificationEnabled() {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &TokenClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// FromToken builds an authenticated Identity from the token's claims.
func FromToken(token string) (Identity, error) {
	claims, err := Introspect(token)
	if err != nil {
		return Identity{State: StateUnknown}, err
	}
	return Identity{
		State:       StateAuthenticated,
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		Admin:       claims.IsAdmin(),
	}, nil
}

// MintTestToken issues a signed token for local tooling and tests.
func MintTestToken(cfg config.JWTConfig, now time.Time, subject, name, email, role string) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	claims := TokenClaims{
		Name:  name,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
