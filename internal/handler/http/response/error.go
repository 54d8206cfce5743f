package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid token")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidNotificationID):
		BadRequest(w, "Invalid notification ID", nil)
	case errors.Is(err, notification.ErrQueueClosed):
		ServiceUnavailable(w, "Notification queue is not accepting new notifications")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrInvalidWindow):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ServiceUnavailable(w, "Request cancelled")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
