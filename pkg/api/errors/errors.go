// Package errors translates domain errors into HTTP responses. Internal
// details are logged, never exposed to the client.
package errors

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/domain"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

// Respond maps a domain error to the matching HTTP status and body.
func Respond(c echo.Context, err error) error {
	switch domain.GetErrorCode(err) {
	case domain.ErrCodeNotFound:
		return NotFoundError(c, messageOf(err))
	case domain.ErrCodeValidation:
		return ValidationError(c, err)
	case domain.ErrCodeConflict:
		return ConflictError(c, messageOf(err))
	case domain.ErrCodeBadRequest:
		return BadRequestError(c, messageOf(err))
	default:
		return InternalError(c, err)
	}
}

func messageOf(err error) string {
	if de, ok := err.(*domain.DomainError); ok {
		return de.Message
	}
	return err.Error()
}

// ValidationError returns 400 with the validation message
func ValidationError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: messageOf(err),
	})
}

// BadRequestError returns 400 for malformed requests
func BadRequestError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// NotFoundError returns 404
func NotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

// ConflictError returns 409
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message,
	})
}

// InternalError returns a generic 500 without exposing internal details
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}
