package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skopintsev/farebook/internal/domain"
)

// writeError maps domain failures onto the HTTP taxonomy: client faults
// 400, simulated payment 402, missing resources 404, lock contention 503,
// everything else 500.
func writeError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientSeatsError
	switch {
	case errors.As(err, &insufficient), errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrReceiptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
