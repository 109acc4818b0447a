package handler

import (
	"context"
	"net/http"
	"strconv"

	"safetyhub/internal/domain/auth"
)

type authKey struct{}

// withAuth resolves the acting user from the gateway-provided identity
// headers and rejects requests without them. Role checks themselves live
// in the services; this only establishes who is calling.
func withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseUint(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || userID == 0 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid X-User-ID"})
			return
		}
		roleID, err := strconv.Atoi(r.Header.Get("X-User-Role"))
		if err != nil || roleID <= 0 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid X-User-Role"})
			return
		}

		actor := auth.Context{UserID: userID, Role: auth.Role(roleID)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authKey{}, actor)))
	})
}

func actorFrom(r *http.Request) auth.Context {
	actor, _ := r.Context().Value(authKey{}).(auth.Context)
	return actor
}
