package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"lamad-backend/pkg/auth"
	"lamad-backend/pkg/common"
)

// Authenticate validates the bearer token and threads the agent's
// identity through the request context. The token only proves who the
// agent is; attestations are resolved per request from the directory.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := validator.Validate(parts[1])
			if err != nil {
				logger.Debug("token validation failed", zap.Error(err))
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			ctx := common.WithAgentID(r.Context(), claims.AgentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
