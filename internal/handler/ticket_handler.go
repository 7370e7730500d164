package handler

import (
	"net/http"
	"ticket-waitlist/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("tickets/:id", h.GetTicket)
		router.GET("tickets", h.ListUserTickets)
		router.POST("tickets/:id/checkin", h.CheckIn)
	}
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.service.GetTicket(c, c.Param("id"))
	if err != nil {
		handleError(c, err, "GetTicket")
		return
	}

	handleSuccess(c, ticket, http.StatusOK)
}

func (h *TicketHandler) ListUserTickets(c *gin.Context) {
	userID, ok := RequireUserID(c)
	if !ok {
		return
	}

	eventID := c.Query("event_id")
	tickets, err := h.service.ListUserTickets(c, eventID, userID)
	if err != nil {
		handleError(c, err, "ListUserTickets")
		return
	}

	handleSuccess(c, gin.H{"tickets": tickets}, http.StatusOK)
}

func (h *TicketHandler) CheckIn(c *gin.Context) {
	ticket, err := h.service.CheckIn(c, c.Param("id"))
	if err != nil {
		handleError(c, err, "CheckIn")
		return
	}

	handleSuccess(c, ticket, http.StatusOK)
}
