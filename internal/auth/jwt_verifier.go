package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"galeria/internal/domain"
	"galeria/internal/domain/models"
)

// allowedAlgs lists the signature algorithms Supabase issues. The
// parser rejects anything else outright, so an attacker cannot steer
// verification onto a weaker method.
var allowedAlgs = []string{"RS256", "ES256"}

// SupabaseJWTVerifier checks console bearer tokens against Supabase's
// published key set
type SupabaseJWTVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWTVerifier builds a verifier around the JWKS endpoint. keyfunc
// caches the key set and refreshes it per the endpoint's HTTP cache
// headers; ctx bounds that background refresh.
func NewJWTVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &SupabaseJWTVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyToken parses and validates a bearer token. Every rejection
// maps to domain.ErrUnauthorized; the reason only shows up in logs so
// callers cannot leak it to clients.
func (v *SupabaseJWTVerifier) VerifyToken(tokenString string) (*models.SupabaseClaims, error) {
	claims := &models.SupabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods(allowedAlgs))
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Anonymous sessions may browse shared galleries, never the
	// console API
	if claims.Role != "authenticated" {
		v.logger.Debug("token role not allowed", "role", claims.Role)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close exists for symmetric shutdown. keyfunc v3 ties its refresh
// goroutine to the constructor context, so there is nothing to tear
// down here.
func (v *SupabaseJWTVerifier) Close() error {
	return nil
}
