package httputil

import (
	"context"
	"net/http"
)

// userIDKey is unexported so only this package can place the value
type userIDKey struct{}

// WithUserID returns a request whose context carries the
// authenticated user's ID
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey{}, userID)
	return r.WithContext(ctx)
}

// GetUserID returns the authenticated user ID, or "" for
// unauthenticated requests such as public gallery views
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey{}).(string)
	return userID
}
