package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/raksha-safety/raksha-backend/internal/api/http"
	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/users/domain"
	"github.com/raksha-safety/raksha-backend/internal/users/service"
)

type Handler struct {
	profiles *service.ProfileService
}

func New(profiles *service.ProfileService) *Handler {
	return &Handler{profiles: profiles}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.GET("/contacts", h.GetContacts)
	rg.PUT("/contacts", h.UpdateContacts)
}

// GetProfile returns the caller's full user document
func (h *Handler) GetProfile(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)

	user, err := h.profiles.GetProfile(c.Request.Context(), uid)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": uid,
		"data":    user,
	})
}

// UpdateProfile applies name, phone, address, blood_group and medical_info; other keys are ignored
func (h *Handler) UpdateProfile(c *gin.Context) {
	var upd domain.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		httpapi.WriteError(c, apperr.Validation("Invalid request body").WithDetails(err.Error()))
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), auth.UserFirebaseUID(c), upd)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func (h *Handler) GetContacts(c *gin.Context) {
	contacts, err := h.profiles.GetContacts(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// UpdateContacts replaces the caller's emergency contacts
func (h *Handler) UpdateContacts(c *gin.Context) {
	var body struct {
		Contacts json.RawMessage `json:"contacts"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httpapi.WriteError(c, apperr.Validation("Invalid request body").WithDetails(err.Error()))
		return
	}

	contacts, err := decodeContacts(body.Contacts)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	saved, err := h.profiles.SetContacts(c.Request.Context(), auth.UserFirebaseUID(c), contacts)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Emergency contacts updated successfully",
		"contacts": saved,
		"count":    len(saved),
	})
}

// decodeContacts accepts an absent or null value as an empty list.
func decodeContacts(raw json.RawMessage) ([]domain.Contact, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []domain.Contact{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, apperr.Validation("Contacts must be an array")
	}

	contacts := make([]domain.Contact, 0, len(items))
	for i, item := range items {
		var ct domain.Contact
		if err := json.Unmarshal(item, &ct); err != nil {
			return nil, service.InvalidContact(i)
		}
		contacts = append(contacts, ct)
	}
	return contacts, nil
}
