package middleware

import (
	"context"
	"net/http"

	"github.com/kozaktomas/face-portal/internal/constants"
)

type contextKey string

const identityContextKey contextKey = "identity"

// RequireIdentity is middleware that requires the X-Portal-UID header and stores
// its value in the request context. Requests without it get a 400 and never
// reach the upstream API.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get(constants.IdentityHeader)
		if uid == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"` + constants.IdentityHeader + ` header is required"}`))
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the identity token stored by RequireIdentity,
// or an empty string if there is none.
func IdentityFromContext(ctx context.Context) string {
	uid, ok := ctx.Value(identityContextKey).(string)
	if !ok {
		return ""
	}
	return uid
}

// SetIdentityInContext adds an identity token to the context.
// This is primarily for testing - use RequireIdentity middleware in production.
func SetIdentityInContext(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, identityContextKey, uid)
}
