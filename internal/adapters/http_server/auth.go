package httpserver

import (
	"context"
	"net/http"
	"strconv"
)

// Authentication itself lives upstream (gateway); by the time a request
// reaches this service the verified caller id arrives in X-User-ID.
// Ownership decisions stay in the application layer.

type ctxKey int

const userIDKey ctxKey = iota

// RequireUser rejects requests without a caller identity. Mounted on write
// routes only; reads are public.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || id <= 0 {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid caller identity")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
