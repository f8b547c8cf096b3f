package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pawcare/pawcare-api/internal/models"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// Verifier verifies bearer tokens against a JWKS endpoint
type Verifier struct {
	jwks     *JWKSManager
	jwksURL  string
	issuer   string
	audience string
}

// NewVerifier creates a verifier. Issuer and audience are checked only when non-empty.
func NewVerifier(jwks *JWKSManager, jwksURL, issuer, audience string) *Verifier {
	return &Verifier{
		jwks:     jwks,
		jwksURL:  jwksURL,
		issuer:   issuer,
		audience: audience,
	}
}

// Verify checks the token signature and registered claims and returns its claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.jwks.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if strings.TrimSpace(token.Subject()) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	claims := &models.JWTClaims{
		Sub:       token.Subject(),
		Issuer:    token.Issuer(),
		Audience:  token.Audience(),
		ExpiresAt: token.Expiration(),
	}
	if scope, ok := token.Get("scope"); ok {
		if s, ok := scope.(string); ok {
			claims.Scope = s
		}
	}

	return claims, nil
}
