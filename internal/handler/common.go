package handler

import (
	"errors"
	"net/http"
	"ticket-waitlist/pkg/apperrors"
	"ticket-waitlist/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDHeader carries the authenticated user id set by the identity
// provider in front of this service. The core treats it as an opaque key;
// an empty value means no identity.
const UserIDHeader = "X-User-ID"

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// RequireUserID aborts with 401 when the caller carries no identity.
func RequireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Missing user identity",
		})
		return "", false
	}
	return userID, true
}

func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInsufficientCapacity):
		log.Warn("Insufficient capacity")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Not enough tickets remaining",
		})
	case errors.Is(err, apperrors.ErrAlreadyInWaitlist):
		log.Warn("Already in waiting list")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Already in the waiting list for this ticket type",
		})
	case errors.Is(err, apperrors.ErrOfferExpired):
		log.Warn("Offer expired")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Offer expired, please rejoin the waiting list",
		})
	case errors.Is(err, apperrors.ErrInvalidEntryStatus):
		log.Warn("Invalid entry status")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Entry is not in a state that allows this operation",
		})
	case errors.Is(err, apperrors.ErrInvalidTicketStatus):
		log.Warn("Invalid ticket status")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket is not in a state that allows this operation",
		})
	case errors.Is(err, apperrors.ErrEventCancelled):
		log.Warn("Event cancelled")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Event is cancelled",
		})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	case errors.Is(err, apperrors.ErrTicketTypeNotFound):
		log.Warn("Ticket type not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket type not found",
		})
	case errors.Is(err, apperrors.ErrEntryNotFound):
		log.Warn("Entry not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Waiting list entry not found",
		})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrMissingUserID):
		log.Warn("Missing user id")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Missing user identity",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
