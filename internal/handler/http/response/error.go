package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var geofenceErr *attendance.GeofenceViolationError
	if errors.As(err, &geofenceErr) {
		GeofenceViolation(w, geofenceErr.Error(), geofenceErr.NearestDistance, geofenceErr.NearestFence)
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		ConflictWithCode(w, "ALREADY_CHECKED_IN", "You are already checked in. Check out first.")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		ConflictWithCode(w, "ALREADY_CHECKED_OUT", "You are already checked out. Check in to start a new session.")
	case errors.Is(err, attendance.ErrDuplicateAction):
		ConflictWithCode(w, "DUPLICATE_ACTION", err.Error())
	case errors.Is(err, attendance.ErrNoCheckInYet):
		BadRequestWithCode(w, "NO_CHECK_IN", "You have not checked in yet today. Check in first.")
	case errors.Is(err, attendance.ErrInvalidSessionType):
		BadRequest(w, "Invalid session type", nil)
	case errors.Is(err, attendance.ErrRateLimited):
		TooManyRequests(w, "Too many attendance actions. Please wait a moment and try again.")
	case errors.Is(err, attendance.ErrGeofenceViolation):
		Forbidden(w, "You are outside the allowed attendance area")
	case errors.Is(err, attendance.ErrSummaryNotFound):
		NotFound(w, "Daily summary not found")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "User account is inactive")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrUnauthorized):
		Forbidden(w, "Not allowed to access this notification")
	case errors.Is(err, notification.ErrInvalidNotificationType):
		BadRequest(w, "Invalid notification type", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
