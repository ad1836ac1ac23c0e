package appointments

import "errors"

var (
	// ErrDoctorRequired is returned when a slot-less booking names no doctor
	ErrDoctorRequired = errors.New("doctor id is required")

	// ErrDateRequired is returned when a slot-less booking names no date
	ErrDateRequired = errors.New("appointment date is required")

	// ErrInvalidModality is returned for a modality outside ONLINE/OFFLINE
	ErrInvalidModality = errors.New("modality must be ONLINE or OFFLINE")

	// ErrInvalidSlotID is returned for a non-positive slot reference
	ErrInvalidSlotID = errors.New("slot id must be positive")

	// ErrPatientNotFound is returned when the caller has no patient identity
	ErrPatientNotFound = errors.New("patient identity not found")

	// ErrSlotTaken is returned when the referenced slot is no longer AVAILABLE
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrDateOutsideSlot is returned when the requested date does not match the slot
	ErrDateOutsideSlot = errors.New("appointment date must fall on the slot date")

	// ErrInvalidStatus is returned for a status outside the registered values
	ErrInvalidStatus = errors.New("unknown appointment status")

	// ErrTerminalStatus is returned when transitioning out of a terminal status
	ErrTerminalStatus = errors.New("appointment status is final")

	// ErrNotParty is returned when the caller is not party to the appointment
	ErrNotParty = errors.New("caller is not party to this appointment")
)
