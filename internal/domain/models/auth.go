package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims holds the subset of Supabase Auth JWT claims this
// service reads. Tokens carry more (aal, amr, session_id, metadata);
// lenient decoding drops what we never look at.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the subject claim, the stable identifier for the
// signed-in photographer
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}
