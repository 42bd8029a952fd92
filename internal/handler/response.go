package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/repository"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidLineID),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidMembershipTier),
		errors.Is(err, service.ErrInvalidUnitPrice),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidVoucherPercent):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrPaymentInFlight),
		errors.Is(err, service.ErrPaymentAlreadyPending),
		errors.Is(err, service.ErrLineAlreadyPaid),
		errors.Is(err, service.ErrConfirmRequiresCash),
		errors.Is(err, service.ErrPaymentCancelled),
		errors.Is(err, service.ErrPaymentAlreadyPaid),
		errors.Is(err, service.ErrRetryRequiresCancelled):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
