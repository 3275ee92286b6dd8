package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/validator"
)

// upstreamError is implemented by failures of the HRIS backend client.
type upstreamError interface {
	error
	Retryable() bool
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var upstream upstreamError
	if errors.As(err, &upstream) {
		slog.Error("Attendance backend call failed", "error", err)
		BadGateway(w, "Attendance service is unavailable", map[string]string{
			"retryable": strconv.FormatBool(upstream.Retryable()),
		})
		return
	}

	switch {
	// Transition errors
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "You have not checked in yet")
	case errors.Is(err, attendance.ErrStatusLocked):
		Conflict(w, "Attendance is already marked as leave or week off for today")
	case errors.Is(err, attendance.ErrCheckOutOverrideOutside):
		Conflict(w, "You have already checked out and are outside the allowed radius")
	case errors.Is(err, attendance.ErrOutsideGeofence):
		Forbidden(w, "You are outside the allowed radius")
	case errors.Is(err, attendance.ErrLocationUnavailable):
		Conflict(w, "Current location is not available")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "You have already checked in today")

	// Input errors
	case errors.Is(err, attendance.ErrInvalidMonth):
		BadRequest(w, "Invalid month, expected YYYY-MM", nil)
	case errors.Is(err, attendance.ErrUnsupportedStatus):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled attendance error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
