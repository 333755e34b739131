package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/raksha-safety/raksha-backend/internal/api/http"
	"github.com/raksha-safety/raksha-backend/internal/apperr"
	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/sos/domain"
	"github.com/raksha-safety/raksha-backend/internal/sos/service"
)

type Handler struct {
	sos *service.SOSService
}

func New(sos *service.SOSService) *Handler {
	return &Handler{sos: sos}
}

// Register wires the SOS routes. Static paths are registered before /:sos_id.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/trigger", h.Trigger)
	rg.POST("/deactivate", h.Deactivate)
	rg.GET("/history", h.History)
	rg.GET("/:sos_id", h.GetDetails)
}

// Trigger starts an SOS. The body is optional; an empty body means location 0,0 and a manual trigger.
func (h *Handler) Trigger(c *gin.Context) {
	var in domain.TriggerInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		httpapi.WriteError(c, apperr.Validation("Invalid request body").WithDetails(err.Error()))
		return
	}

	res, err := h.sos.Trigger(c.Request.Context(), auth.UserFirebaseUID(c), in)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"sos_id":             res.Record.ID,
		"location_url":       res.Record.LocationURL,
		"message":            "SOS triggered successfully",
		"timestamp":          res.Record.Timestamp,
		"emergency_contacts": res.Record.EmergencyContacts,
		"alert_message":      res.AlertMessage,
	})
}

func (h *Handler) GetDetails(c *gin.Context) {
	id := c.Param("sos_id")

	rec, err := h.sos.GetDetails(c.Request.Context(), auth.UserFirebaseUID(c), id)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sos_id":  id,
		"data":    rec,
	})
}

func (h *Handler) Deactivate(c *gin.Context) {
	var body struct {
		SOSID string `json:"sos_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httpapi.WriteError(c, apperr.Validation("sos_id is required"))
		return
	}

	if err := h.sos.Deactivate(c.Request.Context(), auth.UserFirebaseUID(c), body.SOSID); err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SOS deactivated successfully",
		"sos_id":  body.SOSID,
	})
}

// History lists the caller's SOS events, newest first. An absent or empty ?limit means 50.
func (h *Handler) History(c *gin.Context) {
	limit := domain.DefaultHistoryLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		limit = n
	}

	entries, err := h.sos.ListHistory(c.Request.Context(), auth.UserFirebaseUID(c), limit)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": entries,
		"count":   len(entries),
	})
}
