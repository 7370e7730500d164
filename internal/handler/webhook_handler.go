package handler

import (
	"io"
	"net/http"
	"ticket-waitlist/internal/payment"
	"ticket-waitlist/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment-provider notifications. Signature
// verification is assumed to have happened in the gateway in front of this
// service; here the payload is validated once into the internal event shape
// before it reaches the finalizer.
type WebhookHandler struct {
	service service.PurchaseService
}

func NewWebhookHandler(service service.PurchaseService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("webhooks/payment", h.PaymentConfirmed)
	}
}

func (h *WebhookHandler) PaymentConfirmed(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unreadable body",
		})
		return
	}

	ev, err := payment.ParseConfirmation(body)
	if err != nil {
		handleError(c, err, "PaymentConfirmed")
		return
	}

	tickets, err := h.service.Finalize(c, ev)
	if err != nil {
		handleError(c, err, "PaymentConfirmed")
		return
	}

	handleSuccess(c, gin.H{"tickets": tickets}, http.StatusOK)
}
