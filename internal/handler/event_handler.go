package handler

import (
	"net/http"
	"ticket-waitlist/internal/model"
	"ticket-waitlist/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("events", h.CreateEvent)
		router.GET("events/search", h.SearchEvents)
		router.GET("events/:id/availability", h.GetAvailability)
		router.POST("events/:id/cancel", h.CancelEvent)
	}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req model.CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	event, ticketTypes, err := h.service.CreateEvent(c, req)
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}

	handleSuccess(c, gin.H{
		"event":        event,
		"ticket_types": ticketTypes,
	}, http.StatusCreated)
}

func (h *EventHandler) SearchEvents(c *gin.Context) {
	events := h.service.SearchEvents(c, c.Query("q"))
	handleSuccess(c, gin.H{"events": events}, http.StatusOK)
}

// GetAvailability is read on every event page view; the service serves it
// through the cache and always returns a well-formed list.
func (h *EventHandler) GetAvailability(c *gin.Context) {
	bypass := c.Query("bypass") == "true"
	availability := h.service.GetAvailability(c, c.Param("id"), bypass)
	handleSuccess(c, gin.H{"ticket_types": availability}, http.StatusOK)
}

func (h *EventHandler) CancelEvent(c *gin.Context) {
	if err := h.service.CancelEvent(c, c.Param("id")); err != nil {
		handleError(c, err, "CancelEvent")
		return
	}

	handleSuccess(c, nil, http.StatusOK)
}
