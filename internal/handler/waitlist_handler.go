package handler

import (
	"net/http"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/service"

	"github.com/gin-gonic/gin"
)

type WaitlistHandler struct {
	service service.WaitlistService
}

func NewWaitlistHandler(service service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: service}
}

func (h *WaitlistHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("waitlist/join", h.Join)
		router.POST("waitlist/:id/cancel", h.CancelEntry)
		router.GET("waitlist/position", h.GetQueuePosition)
	}
}

func (h *WaitlistHandler) Join(c *gin.Context) {
	userID, ok := RequireUserID(c)
	if !ok {
		return
	}

	var req model.JoinRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	entry, err := h.service.Join(c, userID, req)
	if err != nil {
		handleError(c, err, "Join")
		return
	}

	handleSuccess(c, entry, http.StatusCreated)
}

func (h *WaitlistHandler) CancelEntry(c *gin.Context) {
	userID, ok := RequireUserID(c)
	if !ok {
		return
	}

	entry, err := h.service.CancelEntry(c, userID, c.Param("id"))
	if err != nil {
		handleError(c, err, "CancelEntry")
		return
	}

	handleSuccess(c, entry, http.StatusOK)
}

// GetQueuePosition always answers 200 with a well-formed position; the
// service degrades to "unknown" rather than erroring under load.
func (h *WaitlistHandler) GetQueuePosition(c *gin.Context) {
	userID, ok := RequireUserID(c)
	if !ok {
		return
	}

	eventID := c.Query("event_id")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing event_id",
		})
		return
	}

	position := h.service.GetQueuePosition(c, eventID, userID)
	handleSuccess(c, position, http.StatusOK)
}
