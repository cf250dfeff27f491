// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"promptbuddy/internal/models"
	"promptbuddy/internal/token"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// IdentityKey is the context key for the authenticated identity.
	IdentityKey contextKey = "identity"
)

// Authenticate resolves the bearer token from the Authorization header
// and stores the identity in the request context. Downstream handlers
// can access it via IdentityFromCtx(). This middleware does NOT enforce
// authentication — it just loads the identity if a valid token is sent.
func Authenticate(store *token.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), bearerToken(r))
			if err != nil {
				// Treat a token-store failure as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				ctx := context.WithValue(r.Context(), IdentityKey, data)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401. Must be applied
// after Authenticate in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromCtx(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects requests whose authenticated role lacks the
// given permission: 401 when unauthenticated, 403 when the role does not
// carry it. Must be applied after Authenticate.
func RequirePermission(perm models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFromCtx(r.Context())
			if ident == nil {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !models.Role(ident.Role).Can(perm) {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromCtx extracts the authenticated identity from the request
// context. Returns nil if the request carries no valid token.
func IdentityFromCtx(ctx context.Context) *token.Data {
	data, _ := ctx.Value(IdentityKey).(*token.Data)
	return data
}

// bearerToken extracts the opaque token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
