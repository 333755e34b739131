package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/raksha-safety/raksha-backend/internal/api/http"
	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/logging"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
)

var errEmptyUID = errors.New("token has no uid")

// FirebaseAuthMiddleware validates ID tokens and binds the caller's uid to the request
func FirebaseAuthMiddleware(verifier auth.TokenVerifier, policy outbound.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.TrimSpace(header) == "" {
			httpapi.WriteError(c, apperr.New(apperr.KindUnauthenticated, "No authorization token provided"))
			return
		}

		token := extractToken(header)
		var uid string
		err := policy.Call(c.Request.Context(), func(ctx context.Context) error {
			var verr error
			uid, verr = verifier.VerifyIDToken(ctx, token)
			return verr
		})
		if err == nil && uid == "" {
			err = errEmptyUID
		}
		if err != nil {
			logging.FromContext(c.Request.Context()).Debug("token rejected", zap.Error(err))
			httpapi.WriteError(c, apperr.Wrap(apperr.KindInvalidCredential, err, "Invalid token").
				WithDetails(err.Error()))
			return
		}

		auth.SetUserFirebaseUID(c, uid)
		c.Request = c.Request.WithContext(logging.WithContext(
			c.Request.Context(),
			logging.FromContext(c.Request.Context()).With(zap.String("uid", uid)),
		))

		c.Next()
	}
}

// extractToken strips an optional "Bearer " prefix
func extractToken(header string) string {
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(header)
}
