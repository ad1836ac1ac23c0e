package slots

import "errors"

var (
	// ErrDateRequired is returned when the slot date is missing
	ErrDateRequired = errors.New("slot date is required")

	// ErrInvalidTimeRange is returned when start is not before end
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrInvalidModality is returned for a modality outside ONLINE/OFFLINE
	ErrInvalidModality = errors.New("modality must be ONLINE or OFFLINE")

	// ErrDoctorNotFound is returned when the caller has no doctor identity
	ErrDoctorNotFound = errors.New("doctor identity not found")

	// ErrSlotNotFound is returned when no slot matches the id and owner
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotConflict is returned when a slot overlaps an existing one
	ErrSlotConflict = errors.New("an overlapping slot already exists in this time range")

	// ErrSlotNotAvailable is returned when mutating a slot that is no longer AVAILABLE
	ErrSlotNotAvailable = errors.New("slot can only be changed while it is available")
)
