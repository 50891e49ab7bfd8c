// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// OwnerKey is the context key for the owner id of the request.
const OwnerKey contextKey = "owner"

// OwnerSource resolves the owner behind a request. *session.Store
// satisfies it.
type OwnerSource interface {
	Owner(ctx context.Context, r *http.Request) (string, error)
}

// LoadOwner resolves the request owner from its session and stores it in
// the context. When no session exists and fallback is set, the request is
// attributed to fallback; the server only passes one outside production.
// It does not block requests without an owner; use RequireOwner for that.
func LoadOwner(src OwnerSource, fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var owner string
			if src != nil {
				id, err := src.Owner(r.Context(), r)
				if err != nil {
					slog.Error("load session failed", "error", err, "path", r.URL.Path)
				}
				owner = id
			}
			if owner == "" {
				owner = fallback
			}
			if owner != "" {
				r = r.WithContext(context.WithValue(r.Context(), OwnerKey, owner))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner answers 401 when LoadOwner found nobody.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if OwnerFromCtx(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OwnerFromCtx returns the owner id loaded for the request, or "".
func OwnerFromCtx(ctx context.Context) string {
	owner, _ := ctx.Value(OwnerKey).(string)
	return owner
}

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, OwnerKey, owner)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
