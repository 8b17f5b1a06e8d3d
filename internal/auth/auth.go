// Package auth verifies bearer tokens for the private endpoints. Signing
// keys come from the issuer's JWKS endpoint through a standard JWKS client;
// this package only wires key resolution to claim validation.
package auth

import (
	"context"
	"errors"
	"fmt"

	"surftimer-api/internal/config"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var ErrNotConfigured = errors.New("token verification is not configured")

type Verifier struct {
	keys     keyfunc.Keyfunc
	audience string
	issuer   string
	logger   zerolog.Logger
}

func NewVerifier(cfg *config.Config, logger zerolog.Logger) (*Verifier, error) {
	if cfg.JWKSURL == "" {
		logger.Warn().Msg("AUTH_JWKS_URL not set, private endpoints will reject all tokens")
		return &Verifier{logger: logger}, nil
	}

	keys, err := keyfunc.NewDefaultCtx(context.Background(), []string{cfg.JWKSURL})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWKS client: %w", err)
	}

	logger.Info().Str("jwks_url", cfg.JWKSURL).Msg("token verifier initialized")
	return &Verifier{
		keys:     keys,
		audience: cfg.APIAudience,
		issuer:   cfg.Issuer,
		logger:   logger,
	}, nil
}

// Verify validates the token signature against the JWKS key set and checks
// the audience and issuer claims. Returns the decoded claims.
func (v *Verifier) Verify(tokenString string) (jwt.MapClaims, error) {
	if v.keys == nil {
		return nil, ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, v.keys.Keyfunc, opts...)
	if err != nil {
		v.logger.Debug().Err(err).Msg("token verification failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
