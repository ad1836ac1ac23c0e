package appointments

import (
	"context"
	"time"

	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/observability/metrics"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

// Service orchestrates appointment creation, role-scoped listing, and
// guarded status transitions.
type Service struct {
	repo    Repository
	logger  *logging.Logger
	metrics *metrics.SchedulingMetrics
}

// NewService creates the appointment manager. Metrics are optional.
func NewService(repo Repository, logger *logging.Logger, m *metrics.SchedulingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: m}
}

// Create books an appointment for the calling patient. When a slot id is
// given, the slot transition to BOOKED and the appointment insert happen in
// one atomic unit; losing a race yields ErrSlotTaken and no appointment.
func (s *Service) Create(ctx context.Context, caller identity.Identity, req *CreateAppointmentRequest) (*Appointment, error) {
	if !caller.IsPatient() {
		return nil, ErrPatientNotFound
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	appointment := &Appointment{
		PatientID: caller.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Status:    StatusPending,
		Type:      req.Type,
		Location:  req.Location,
		VideoLink: req.VideoLink,
		Notes:     req.Notes,
	}

	if req.SlotID == nil {
		if err := s.repo.Create(ctx, appointment); err != nil {
			return nil, err
		}
		s.logger.Info("appointment created",
			"appointment_id", appointment.ID,
			"patient_id", appointment.PatientID,
			"doctor_id", appointment.DoctorID,
		)
		return appointment, nil
	}

	start := time.Now()
	err := s.repo.CreateWithSlot(ctx, appointment, *req.SlotID)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		outcome := "error"
		if err == ErrSlotTaken {
			outcome = "conflict"
		}
		s.metrics.ObserveBooking(outcome, elapsed)
		return nil, err
	}
	s.metrics.ObserveBooking("booked", elapsed)

	s.logger.Info("slot booked",
		"appointment_id", appointment.ID,
		"patient_id", appointment.PatientID,
		"doctor_id", appointment.DoctorID,
		"slot_id", *req.SlotID,
	)
	return appointment, nil
}

// ListForCaller dispatches to the data-access path for the caller's role.
// An unrecognized role or a role without its identity payload yields an
// empty result: that is an upstream configuration fault, not an error here.
func (s *Service) ListForCaller(ctx context.Context, caller identity.Identity) ([]Appointment, error) {
	switch {
	case caller.IsPatient():
		return s.repo.ListByPatient(ctx, caller.PatientID)
	case caller.IsDoctor():
		return s.repo.ListByDoctor(ctx, caller.DoctorID)
	case caller.IsHospital():
		return s.repo.ListByHospital(ctx, caller.HospitalID)
	default:
		return []Appointment{}, nil
	}
}

// UpdateStatus transitions an appointment's status for a caller that is
// party to it. Party membership is re-verified against the store, and
// terminal statuses admit no further transitions.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Identity, appointmentID int64, status Status, notes *string) (*Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var (
		current *Appointment
		err     error
	)
	switch {
	case caller.IsPatient():
		current, err = s.repo.FindForPatient(ctx, appointmentID, caller.PatientID)
	case caller.IsDoctor():
		current, err = s.repo.FindForDoctor(ctx, appointmentID, caller.DoctorID)
	default:
		return nil, ErrNotParty
	}
	if err != nil {
		return nil, err
	}

	if current.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, appointmentID, status, notes)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment status updated",
		"appointment_id", appointmentID,
		"from", string(current.Status),
		"to", string(status),
		"role", string(caller.Role),
	)
	return updated, nil
}
