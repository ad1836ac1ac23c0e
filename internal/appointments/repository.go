package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carewell/scheduling-platform/internal/slots"
)

// Repository defines the interface for appointment storage
type Repository interface {
	Create(ctx context.Context, appointment *Appointment) error
	CreateWithSlot(ctx context.Context, appointment *Appointment, slotID int64) error
	ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error)
	ListByHospital(ctx context.Context, hospitalID int64) ([]Appointment, error)
	FindForPatient(ctx context.Context, id, patientID int64) (*Appointment, error)
	FindForDoctor(ctx context.Context, id, doctorID int64) (*Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status Status, notes *string) (*Appointment, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory
// storage. Slot booking delegates to the slot repository's conditional Book,
// which is the mutual-exclusion point.
type InMemoryRepository struct {
	mu             sync.Mutex
	appointments   map[int64]*Appointment
	doctorHospital map[int64]int64
	slots          *slots.InMemoryRepository
	nextID         int64
}

// NewInMemoryRepository creates a new in-memory repository. The slot
// repository may be nil when slot-bound booking is not exercised.
func NewInMemoryRepository(slotRepo *slots.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{
		appointments:   make(map[int64]*Appointment),
		doctorHospital: make(map[int64]int64),
		slots:          slotRepo,
	}
}

// AssignDoctorToHospital records the employment relation used by
// hospital-scoped listings.
func (r *InMemoryRepository) AssignDoctorToHospital(doctorID, hospitalID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doctorHospital[doctorID] = hospitalID
}

// Create inserts an appointment without a slot reference.
func (r *InMemoryRepository) Create(ctx context.Context, appointment *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(appointment)
	return nil
}

// CreateWithSlot books the slot and inserts the appointment referencing it.
// Exactly one concurrent caller can win the Book call.
func (r *InMemoryRepository) CreateWithSlot(ctx context.Context, appointment *Appointment, slotID int64) error {
	if r.slots == nil {
		return ErrSlotTaken
	}

	slot, err := r.slots.Peek(ctx, slotID)
	if err != nil {
		return ErrSlotTaken
	}
	if !appointment.Date.IsZero() && !sameDate(appointment.Date, slot.Date) {
		return ErrDateOutsideSlot
	}

	booked, err := r.slots.Book(ctx, slotID)
	if err != nil {
		return ErrSlotTaken
	}

	appointment.DoctorID = booked.DoctorID
	appointment.Date = booked.Date
	if appointment.Type == "" {
		appointment.Type = booked.Type
	}
	if appointment.VideoLink == "" {
		appointment.VideoLink = booked.VideoLink
	}
	if appointment.Location == "" {
		appointment.Location = booked.Location
	}
	appointment.SlotID = &slotID

	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(appointment)
	return nil
}

// ListByPatient returns the patient's appointments.
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.PatientID == patientID }), nil
}

// ListByDoctor returns the doctor's appointments.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.DoctorID == doctorID }), nil
}

// ListByHospital returns appointments across every doctor the hospital employs.
func (r *InMemoryRepository) ListByHospital(ctx context.Context, hospitalID int64) ([]Appointment, error) {
	return r.list(func(a *Appointment) bool {
		return r.doctorHospital[a.DoctorID] == hospitalID
	}), nil
}

// FindForPatient fetches an appointment the patient is party to.
func (r *InMemoryRepository) FindForPatient(ctx context.Context, id, patientID int64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.PatientID != patientID {
		return nil, ErrNotParty
	}
	copied := *a
	return &copied, nil
}

// FindForDoctor fetches an appointment the doctor is party to.
func (r *InMemoryRepository) FindForDoctor(ctx context.Context, id, doctorID int64) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.DoctorID != doctorID {
		return nil, ErrNotParty
	}
	copied := *a
	return &copied, nil
}

// UpdateStatus sets the status and optionally replaces the notes.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id int64, status Status, notes *string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotParty
	}
	a.Status = status
	if notes != nil {
		a.Notes = *notes
	}
	a.UpdatedAt = time.Now().UTC()
	copied := *a
	return &copied, nil
}

func (r *InMemoryRepository) insertLocked(appointment *Appointment) {
	r.nextID++
	appointment.ID = r.nextID
	if appointment.Status == "" {
		appointment.Status = StatusPending
	}
	appointment.CreatedAt = time.Now().UTC()
	appointment.UpdatedAt = appointment.CreatedAt

	stored := *appointment
	r.appointments[appointment.ID] = &stored
}

func (r *InMemoryRepository) list(match func(*Appointment) bool) []Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Appointment
	for _, a := range r.appointments {
		if match(a) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
