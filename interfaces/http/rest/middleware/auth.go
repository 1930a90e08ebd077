package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"flowforge-backend/pkg/auth"
	"flowforge-backend/pkg/common"
	pkgerrors "flowforge-backend/pkg/errors"
)

// devUser is injected when no token is presented in development mode, so the
// engine always has an identity for audit stamping
var devUser = common.User{ID: "dev-user", Name: "Local Developer", Email: "dev@localhost"}

// Authenticate validates the bearer token and attaches the acting user to
// the request context. In development mode a missing token falls back to a
// fixed local identity instead of rejecting the request.
func Authenticate(validator *auth.JWTValidator, allowDevFallback bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if allowDevFallback {
					next.ServeHTTP(w, r.WithContext(common.WithUser(r.Context(), devUser)))
					return
				}
				common.RespondAppError(w, pkgerrors.NewUnauthorizedError("missing authorization header"))
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				common.RespondAppError(w, pkgerrors.NewUnauthorizedError("authorization header must use the Bearer scheme"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				reqID, _ := common.GetRequestID(r.Context())
				logger.Debug("token validation failed",
					zap.String("requestId", reqID),
					zap.Error(err),
				)
				common.RespondAppError(w, err)
				return
			}

			user := common.User{ID: claims.Subject, Name: claims.Name, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(common.WithUser(r.Context(), user)))
		})
	}
}
