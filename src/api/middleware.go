package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/utils"
)

// ClaimsMiddleware turns the verified JWT into auth.Claims on the request
// context. Requests whose token lacks the required claims are rejected
// before any handler runs.
func ClaimsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.FromJWTContext(r.Context())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "invalid or missing token"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// LoggerMiddleware injects the process logger into every request context.
func LoggerMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), logger)))
		})
	}
}
