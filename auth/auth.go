/*
Package auth verifies bearer tokens for the template routes.

PURPOSE:
  Templates belong to a user, so their routes need an owner identity. Users
  sign in elsewhere; this package only checks the HS256 JWT they were given
  and puts the resulting Principal into the request context. The calculate
  route never passes through here.

TOKEN RULES:
  - Signing method must be HS256
  - exp / nbf are honoured with a 30s leeway
  - sub is required and becomes Principal.ID
  - iss and aud are checked when the Verifier is configured with them

SEE ALSO:
  - middleware.go: HTTP middleware
  - api/templates.go: Consumes PrincipalFromContext
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Leeway tolerates clock skew between issuer and server.
const Leeway = 30 * time.Second

// Claims is the token payload.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Verifier checks tokens signed with a shared secret.
type Verifier struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Verify parses and validates token.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if v == nil || len(v.Secret) == 0 {
		return nil, fmt.Errorf("%w: verifier has no secret", ErrUnauthorized)
	}
	if token == "" {
		return nil, ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(Leeway),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	claims := &Claims{}
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Issue signs a token for subject. Used for local development and tests.
func (v *Verifier) Issue(p Principal, ttl time.Duration) (string, error) {
	if v == nil || len(v.Secret) == 0 {
		return "", fmt.Errorf("%w: verifier has no secret", ErrUnauthorized)
	}
	now := time.Now()
	claims := Claims{
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    v.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.Secret)
}

// Principal extracts the caller identity.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.Subject, Name: c.Name, Email: c.Email}
}

// =============================================================================
// CONTEXT
// =============================================================================

type contextKey string

const principalContextKey contextKey = "principal"

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}
