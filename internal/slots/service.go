package slots

import (
	"context"

	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/observability/metrics"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

// Service orchestrates slot publication and mutation. Only the publishing
// doctor may mutate a slot, and only while it is AVAILABLE.
type Service struct {
	repo    Repository
	cache   *ListCache
	logger  *logging.Logger
	metrics *metrics.SchedulingMetrics
}

// NewService creates the slot manager. Cache and metrics are optional.
func NewService(repo Repository, cache *ListCache, logger *logging.Logger, m *metrics.SchedulingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, metrics: m}
}

// Create publishes a new AVAILABLE slot for the calling doctor.
func (s *Service) Create(ctx context.Context, caller identity.Identity, req *CreateSlotRequest) (*Slot, error) {
	if !caller.IsDoctor() {
		return nil, ErrDoctorNotFound
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slot := &Slot{
		DoctorID:  caller.DoctorID,
		Date:      req.Date,
		Start:     req.Start,
		End:       req.End,
		Type:      req.Type,
		VideoLink: req.VideoLink,
		Location:  req.Location,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		s.metrics.ObserveSlotOp("create", "error")
		return nil, err
	}
	s.cache.Invalidate(ctx, caller.DoctorID)
	s.metrics.ObserveSlotOp("create", "ok")

	s.logger.Info("slot published",
		"slot_id", slot.ID,
		"doctor_id", slot.DoctorID,
		"date", slot.Date.Format("2006-01-02"),
		"start", slot.Start.String(),
		"end", slot.End.String(),
	)
	return slot, nil
}

// Update edits a slot that still belongs to the caller and is AVAILABLE.
func (s *Service) Update(ctx context.Context, caller identity.Identity, slotID int64, req *UpdateSlotRequest) (*Slot, error) {
	if !caller.IsDoctor() {
		return nil, ErrDoctorNotFound
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByIDForDoctor(ctx, slotID, caller.DoctorID)
	if err != nil {
		return nil, err
	}
	if existing.Status != SlotAvailable {
		return nil, ErrSlotNotAvailable
	}

	existing.Date = req.Date
	existing.Start = req.Start
	existing.End = req.End
	existing.Type = req.Type
	existing.VideoLink = req.VideoLink
	existing.Location = req.Location

	if err := s.repo.Update(ctx, existing); err != nil {
		s.metrics.ObserveSlotOp("update", "error")
		return nil, err
	}
	s.cache.Invalidate(ctx, caller.DoctorID)
	s.metrics.ObserveSlotOp("update", "ok")

	s.logger.Info("slot updated", "slot_id", existing.ID, "doctor_id", existing.DoctorID)
	return existing, nil
}

// Delete removes one of the caller's slots while no appointment holds it.
func (s *Service) Delete(ctx context.Context, caller identity.Identity, slotID int64) error {
	if !caller.IsDoctor() {
		return ErrDoctorNotFound
	}

	existing, err := s.repo.FindByIDForDoctor(ctx, slotID, caller.DoctorID)
	if err != nil {
		return err
	}
	if existing.Status != SlotAvailable {
		return ErrSlotNotAvailable
	}

	if err := s.repo.Delete(ctx, slotID); err != nil {
		s.metrics.ObserveSlotOp("delete", "error")
		return err
	}
	s.cache.Invalidate(ctx, caller.DoctorID)
	s.metrics.ObserveSlotOp("delete", "ok")

	s.logger.Info("slot deleted", "slot_id", slotID, "doctor_id", caller.DoctorID)
	return nil
}

// ListForDoctor returns every slot of the doctor for browsing, all statuses,
// ordered by date then start time. Served from cache when warm.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]Slot, error) {
	if listing, ok := s.cache.Get(ctx, doctorID); ok {
		return listing, nil
	}

	listing, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, doctorID, listing)
	return listing, nil
}
