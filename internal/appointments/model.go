package appointments

import (
	"time"

	"github.com/carewell/scheduling-platform/internal/slots"
)

// Status tracks the clinical/administrative progress of an appointment.
// It is deliberately separate from the slot's reservation state.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusCompleted          Status = "COMPLETED"
	StatusCancelledByPatient Status = "CANCELLED_BY_PATIENT"
	StatusCancelledByDoctor  Status = "CANCELLED_BY_DOCTOR"
)

// Valid reports whether the status is a registered value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelledByPatient, StatusCancelledByDoctor:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelledByPatient, StatusCancelledByDoctor:
		return true
	}
	return false
}

// Appointment is a confirmed booking between a patient and a doctor,
// optionally bound to the slot it was booked against. Appointments are
// never hard-deleted; cancellation is a status transition.
type Appointment struct {
	ID        int64          `json:"id"`
	PatientID int64          `json:"patient_id"`
	DoctorID  int64          `json:"doctor_id"`
	Date      time.Time      `json:"date"`
	Status    Status         `json:"status"`
	Type      slots.Modality `json:"type"`
	Location  string         `json:"location,omitempty"`
	VideoLink string         `json:"video_link,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	SlotID    *int64         `json:"slot_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateAppointmentRequest carries input for booking an appointment. When
// SlotID is set the doctor, date and modality are inherited from the slot;
// otherwise they must be supplied.
type CreateAppointmentRequest struct {
	DoctorID  int64
	Date      time.Time
	Type      slots.Modality
	Location  string
	VideoLink string
	Notes     string
	SlotID    *int64
}

// Validate rejects malformed input before the store is touched.
func (r *CreateAppointmentRequest) Validate() error {
	if r.SlotID != nil {
		if *r.SlotID <= 0 {
			return ErrInvalidSlotID
		}
		return nil
	}
	if r.DoctorID <= 0 {
		return ErrDoctorRequired
	}
	if r.Date.IsZero() {
		return ErrDateRequired
	}
	if !r.Type.Valid() {
		return ErrInvalidModality
	}
	return nil
}
