package middleware

import (
	"context"
	"net/http"

	"github.com/ocrlab-io/ocrlab/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserAuth resolves the tenant from the x-user-id header. Every data route
// is scoped to this user; requests without the header are rejected.
func UserAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("x-user-id")
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing x-user-id header")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
