package auth

import "galeria/internal/domain/models"

// JWTVerifier validates console bearer tokens. The auth middleware
// depends only on this interface, so tests swap in a static verifier
// instead of standing up a JWKS endpoint.
type JWTVerifier interface {
	// VerifyToken returns the claims for a valid token. Invalid,
	// expired and wrong-role tokens all come back as errors.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases verifier resources at shutdown
	Close() error
}
