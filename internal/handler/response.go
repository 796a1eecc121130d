package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chainride/internal/fare"
	"chainride/internal/geocode"
	"chainride/internal/ledger"
	"chainride/internal/repository"
	"chainride/internal/service"
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
	case errors.Is(err, service.ErrRideNotFound),
		errors.Is(err, service.ErrRiderNotFound),
		errors.Is(err, service.ErrDriverNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, fare.ErrInvalidCoordinates):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRideAlreadyAccepted),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict

	// Geocoding failures: the coordinates were well-formed but could not
	// be resolved.
	case errors.Is(err, geocode.ErrLocationNotFound),
		errors.Is(err, geocode.ErrGeocoderFailure):
		return http.StatusUnprocessableEntity

	// Advisory balance check at request time.
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusPaymentRequired

	case errors.Is(err, ledger.ErrUnavailable),
		errors.Is(err, ledger.ErrContractUninitialized):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
