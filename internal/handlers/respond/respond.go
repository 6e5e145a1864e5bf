package respond

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pustakalu_backend/internal/service"
)

// ServiceError maps the order-flow sentinel errors onto HTTP statuses. The
// sentinel text is safe to show; anything unrecognized is logged and hidden
// behind a generic 500.
func ServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong"

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrPaymentVerificationFailed):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "you do not have access to this order"
	case errors.Is(err, service.ErrGatewayUnavailable):
		status, message = http.StatusServiceUnavailable, "payment gateway unavailable, try again shortly"
	default:
		log.Printf("❌ order flow error: %v", err)
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}
