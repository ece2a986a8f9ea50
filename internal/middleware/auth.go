package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"starscape-server/internal/auth"
	"starscape-server/internal/shared/errors"
	"starscape-server/internal/shared/response"
)

type contextKey string

const UserContextKey contextKey = "user"

func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "jwt",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		logger.Debug("Processing JWT authentication")

		header := r.Header.Get("Authorization")
		if header == "" {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Error(w, r, logger, errors.Unauthorized("authorization header must use the Bearer scheme"))
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		logger.Debug("JWT authentication successful", "role", claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Helper to get user from context
func GetUserFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
