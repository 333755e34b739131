package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/logging"
)

// WriteError renders err as {"error": message, ...} with the status for its kind.
// Map details are merged into the body; any other details go under "details".
// Errors outside the taxonomy become 500 with their own message.
func WriteError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr == nil {
		appErr = apperr.Wrap(apperr.KindInternal, err, err.Error())
	}

	status := apperr.HTTPStatus(appErr.Kind())
	body := gin.H{"error": appErr.Message()}
	switch d := appErr.Details().(type) {
	case nil:
	case gin.H:
		mergeDetails(body, d)
	case map[string]any:
		mergeDetails(body, d)
	default:
		body["details"] = d
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			zap.String("kind", string(appErr.Kind())),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, body)
}

func mergeDetails(body gin.H, details map[string]any) {
	for k, v := range details {
		if k == "error" {
			continue
		}
		body[k] = v
	}
}

// NotFound is the handler for unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
}

// Recovery turns a panic into a 500 with a fixed body and logs the panic value.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context()).Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
