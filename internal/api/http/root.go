package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var endpoints = gin.H{
	"auth_register":   "POST /api/auth/register",
	"auth_login":      "POST /api/auth/login",
	"user_profile":    "GET /api/user/profile",
	"update_profile":  "PUT /api/user/profile",
	"get_contacts":    "GET /api/user/contacts",
	"update_contacts": "PUT /api/user/contacts",
	"trigger_sos":     "POST /api/sos/trigger",
	"get_sos":         "GET /api/sos/<sos_id>",
	"deactivate_sos":  "POST /api/sos/deactivate",
	"sos_history":     "GET /api/sos/history",
	"health":          "GET /api/health",
}

// RootHandler serves the API descriptor at GET /.
func RootHandler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "R.A.K.S.H.A Backend API",
			"version":   version,
			"status":    "running",
			"endpoints": endpoints,
		})
	}
}
