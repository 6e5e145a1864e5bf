package service

import "errors"

// Error taxonomy for the order/payment flows. Handlers translate these to
// HTTP statuses at the boundary; nothing below the handlers writes a response.
var (
	ErrValidation                = errors.New("invalid request")
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrAmountMismatch            = errors.New("amount mismatch")
	ErrInvalidState              = errors.New("invalid order state")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrGatewayUnavailable        = errors.New("payment gateway unavailable")
)
