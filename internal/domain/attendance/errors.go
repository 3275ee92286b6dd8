package attendance

import "errors"

// Attendance domain errors
var (
	// Transition errors
	ErrNotCheckedIn            = errors.New("you have not checked in yet")
	ErrOutsideGeofence         = errors.New("you are outside the allowed radius")
	ErrCheckOutOverrideOutside = errors.New("you have already checked out and are outside the allowed radius")
	ErrStatusLocked            = errors.New("attendance is already marked as leave or week off for today")
	ErrLocationUnavailable     = errors.New("current location is not available")
	ErrAlreadyCheckedIn        = errors.New("you have already checked in today")

	// Input errors
	ErrUnsupportedStatus = errors.New("unsupported attendance status")
	ErrInvalidMonth      = errors.New("invalid month, expected YYYY-MM")
)
