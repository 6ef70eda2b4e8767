package booking_controller

import "errors"

// Validation and authorization failures surfaced by booking operations.
// Conflict and lifecycle-state errors come from the models layer.
var (
	ErrInvalidInterval     = errors.New("end time must be after start time")
	ErrPastStart           = errors.New("start time must be in the future")
	ErrOutsideWorkingHours = errors.New("booking is outside business hours")
	ErrTooShort            = errors.New("minimum booking duration not met")
	ErrRoomInactive        = errors.New("room not available")
	ErrNotAuthorized       = errors.New("not authorized for this operation")
)
