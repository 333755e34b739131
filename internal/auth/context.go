package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
)

// SetUserFirebaseUID binds the authenticated uid to this request only.
func SetUserFirebaseUID(c *gin.Context, uid string) {
	c.Set(CtxFirebaseUID, uid)
}

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// Empty when the route is not behind FirebaseAuthMiddleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
