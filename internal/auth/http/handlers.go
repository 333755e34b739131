package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/raksha-safety/raksha-backend/internal/api/http"
	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/auth/domain"
)

// RegisterUser creates an account and its profile, returning a custom token
func (h *Handler) RegisterUser(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("Missing required fields").
			WithDetails(gin.H{"required": domain.RequiredRegisterFields}))
		return
	}

	reg, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user_id": reg.UserID,
		"token":   reg.Token,
		"user":    reg.User,
	})
}

// Login issues a custom token for the account with the given email
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, apperr.Validation("Email and password required"))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user_id": res.UserID,
		"token":   res.Token,
		"user":    res.Profile,
	})
}
