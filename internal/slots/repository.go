package slots

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for slot storage
type Repository interface {
	Create(ctx context.Context, slot *Slot) error
	FindByIDForDoctor(ctx context.Context, id, doctorID int64) (*Slot, error)
	Update(ctx context.Context, slot *Slot) error
	Delete(ctx context.Context, id int64) error
	ListByDoctor(ctx context.Context, doctorID int64) ([]Slot, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.Mutex
	slots  map[int64]*Slot
	nextID int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{slots: make(map[int64]*Slot)}
}

// Create inserts the slot unless it overlaps an existing one for the same
// doctor and date. Check and insert run under one lock, mirroring the
// guarded INSERT of the Postgres store.
func (r *InMemoryRepository) Create(ctx context.Context, slot *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.slotsForDoctorLocked(slot.DoctorID)
	if Conflicts(existing, slot.Date, slot.Start, slot.End) {
		return ErrSlotConflict
	}

	r.nextID++
	slot.ID = r.nextID
	slot.Status = SlotAvailable
	slot.CreatedAt = time.Now().UTC()
	slot.UpdatedAt = slot.CreatedAt

	stored := *slot
	r.slots[slot.ID] = &stored
	return nil
}

// FindByIDForDoctor retrieves a slot owned by the doctor.
func (r *InMemoryRepository) FindByIDForDoctor(ctx context.Context, id, doctorID int64) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok || slot.DoctorID != doctorID {
		return nil, ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

// Update applies the new fields if the slot is still AVAILABLE and the new
// range does not collide with the doctor's other slots.
func (r *InMemoryRepository) Update(ctx context.Context, slot *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.slots[slot.ID]
	if !ok || stored.DoctorID != slot.DoctorID || stored.Status != SlotAvailable {
		return ErrSlotConflict
	}

	var others []Slot
	for _, s := range r.slotsForDoctorLocked(slot.DoctorID) {
		if s.ID != slot.ID {
			others = append(others, s)
		}
	}
	if Conflicts(others, slot.Date, slot.Start, slot.End) {
		return ErrSlotConflict
	}

	stored.Date = slot.Date
	stored.Start = slot.Start
	stored.End = slot.End
	stored.Type = slot.Type
	stored.VideoLink = slot.VideoLink
	stored.Location = slot.Location
	stored.UpdatedAt = time.Now().UTC()
	slot.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes the slot only while it is AVAILABLE.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok || slot.Status != SlotAvailable {
		return ErrSlotNotAvailable
	}
	delete(r.slots, id)
	return nil
}

// ListByDoctor returns the doctor's slots ordered by date then start time.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := r.slotsForDoctorLocked(doctorID)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Start < result[j].Start
	})
	return result, nil
}

// Book is the in-memory counterpart of the conditional UPDATE the
// appointment store runs: it marks the slot BOOKED only while it is still
// AVAILABLE, under the repository lock.
func (r *InMemoryRepository) Book(ctx context.Context, slotID int64) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if slot.Status != SlotAvailable {
		return nil, ErrSlotNotAvailable
	}
	slot.Status = SlotBooked
	slot.UpdatedAt = time.Now().UTC()
	copied := *slot
	return &copied, nil
}

// Peek returns the slot regardless of owner, used by booking flows.
func (r *InMemoryRepository) Peek(ctx context.Context, slotID int64) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *InMemoryRepository) slotsForDoctorLocked(doctorID int64) []Slot {
	var result []Slot
	for _, slot := range r.slots {
		if slot.DoctorID == doctorID {
			result = append(result, *slot)
		}
	}
	return result
}
