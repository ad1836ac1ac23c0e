package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/slots"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

var bookingDate = time.Date(2024, 9, 17, 0, 0, 0, 0, time.UTC)

func patientIdentity(patientID int64) identity.Identity {
	return identity.Identity{UserID: 100 + patientID, Role: identity.RolePatient, PatientID: patientID}
}

func doctorIdentity(doctorID int64) identity.Identity {
	return identity.Identity{UserID: 200 + doctorID, Role: identity.RoleDoctor, DoctorID: doctorID}
}

func hospitalIdentity(hospitalID int64) identity.Identity {
	return identity.Identity{UserID: 300 + hospitalID, Role: identity.RoleHospital, HospitalID: hospitalID}
}

func newTestService(t *testing.T) (*Service, *InMemoryRepository, *slots.InMemoryRepository) {
	t.Helper()
	slotRepo := slots.NewInMemoryRepository()
	repo := NewInMemoryRepository(slotRepo)
	svc := NewService(repo, logging.Default(), nil)
	return svc, repo, slotRepo
}

func seedSlot(t *testing.T, slotRepo *slots.InMemoryRepository, doctorID int64, start, end slots.ClockTime) *slots.Slot {
	t.Helper()
	slot := &slots.Slot{
		DoctorID:  doctorID,
		Date:      bookingDate,
		Start:     start,
		End:       end,
		Type:      slots.ModalityOnline,
		VideoLink: "https://meet.example.com/room",
	}
	require.NoError(t, slotRepo.Create(context.Background(), slot))
	return slot
}

func TestCreateWithoutSlot(t *testing.T) {
	svc, _, _ := newTestService(t)

	appointment, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{
		DoctorID: 7,
		Date:     bookingDate,
		Type:     slots.ModalityOffline,
		Location: "Clinic B, Room 4",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), appointment.PatientID)
	assert.Equal(t, int64(7), appointment.DoctorID)
	assert.Equal(t, StatusPending, appointment.Status)
	assert.Nil(t, appointment.SlotID)
}

func TestCreateRequiresPatient(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), doctorIdentity(1), &CreateAppointmentRequest{
		DoctorID: 1,
		Date:     bookingDate,
		Type:     slots.ModalityOnline,
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	badSlot := int64(0)

	tests := []struct {
		name string
		req  *CreateAppointmentRequest
		want error
	}{
		{"missing doctor", &CreateAppointmentRequest{Date: bookingDate, Type: slots.ModalityOnline}, ErrDoctorRequired},
		{"missing date", &CreateAppointmentRequest{DoctorID: 1, Type: slots.ModalityOnline}, ErrDateRequired},
		{"bad modality", &CreateAppointmentRequest{DoctorID: 1, Date: bookingDate, Type: "HOUSE_CALL"}, ErrInvalidModality},
		{"bad slot id", &CreateAppointmentRequest{SlotID: &badSlot}, ErrInvalidSlotID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), patientIdentity(1), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBookSlotInheritsSlotFields(t *testing.T) {
	svc, _, slotRepo := newTestService(t)
	slot := seedSlot(t, slotRepo, 3, slots.ClockTime(9*60), slots.ClockTime(10*60))

	appointment, err := svc.Create(context.Background(), patientIdentity(5), &CreateAppointmentRequest{
		SlotID: &slot.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, slot.DoctorID, appointment.DoctorID)
	assert.True(t, appointment.Date.Equal(slot.Date))
	assert.Equal(t, slots.ModalityOnline, appointment.Type)
	assert.Equal(t, slot.VideoLink, appointment.VideoLink)
	require.NotNil(t, appointment.SlotID)
	assert.Equal(t, slot.ID, *appointment.SlotID)

	stored, err := slotRepo.Peek(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slots.SlotBooked, stored.Status)
}

func TestBookSlotTwiceConflicts(t *testing.T) {
	svc, _, slotRepo := newTestService(t)
	slot := seedSlot(t, slotRepo, 3, slots.ClockTime(9*60), slots.ClockTime(10*60))

	_, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{SlotID: &slot.ID})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), patientIdentity(2), &CreateAppointmentRequest{SlotID: &slot.ID})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestBookSlotDateMismatch(t *testing.T) {
	svc, _, slotRepo := newTestService(t)
	slot := seedSlot(t, slotRepo, 3, slots.ClockTime(9*60), slots.ClockTime(10*60))

	_, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{
		Date:   bookingDate.AddDate(0, 0, 1),
		SlotID: &slot.ID,
	})
	assert.ErrorIs(t, err, ErrDateOutsideSlot)

	stored, err := slotRepo.Peek(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slots.SlotAvailable, stored.Status)
}

func TestConcurrentBookingsOneWinner(t *testing.T) {
	svc, repo, slotRepo := newTestService(t)
	slot := seedSlot(t, slotRepo, 3, slots.ClockTime(9*60), slots.ClockTime(10*60))

	const patients = 16
	var wg sync.WaitGroup
	errs := make([]error, patients)

	for i := 0; i < patients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), patientIdentity(int64(i+1)), &CreateAppointmentRequest{
				SlotID: &slot.ID,
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case err == ErrSlotTaken:
			lost++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, patients-1, lost)

	listing, err := repo.ListByDoctor(context.Background(), slot.DoctorID)
	require.NoError(t, err)
	assert.Len(t, listing, 1)
}

func TestListScopedByRole(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.AssignDoctorToHospital(10, 1)
	repo.AssignDoctorToHospital(11, 2)

	seed := []struct {
		patientID, doctorID int64
	}{
		{1, 10},
		{1, 11},
		{2, 10},
	}
	for _, s := range seed {
		_, err := svc.Create(context.Background(), patientIdentity(s.patientID), &CreateAppointmentRequest{
			DoctorID: s.doctorID,
			Date:     bookingDate,
			Type:     slots.ModalityOffline,
			Location: "Clinic A",
		})
		require.NoError(t, err)
	}

	asPatient, err := svc.ListForCaller(context.Background(), patientIdentity(1))
	require.NoError(t, err)
	assert.Len(t, asPatient, 2)

	asDoctor, err := svc.ListForCaller(context.Background(), doctorIdentity(10))
	require.NoError(t, err)
	assert.Len(t, asDoctor, 2)

	asHospital, err := svc.ListForCaller(context.Background(), hospitalIdentity(2))
	require.NoError(t, err)
	require.Len(t, asHospital, 1)
	assert.Equal(t, int64(11), asHospital[0].DoctorID)

	unknown, err := svc.ListForCaller(context.Background(), identity.Identity{UserID: 99, Role: "AUDITOR"})
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestUpdateStatusByParties(t *testing.T) {
	svc, _, _ := newTestService(t)

	appointment, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{
		DoctorID: 10,
		Date:     bookingDate,
		Type:     slots.ModalityOffline,
		Location: "Clinic A",
	})
	require.NoError(t, err)

	notes := "patient requested reschedule"
	updated, err := svc.UpdateStatus(context.Background(), patientIdentity(1), appointment.ID, StatusCancelledByPatient, &notes)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelledByPatient, updated.Status)
	assert.Equal(t, notes, updated.Notes)
}

func TestUpdateStatusRejectsOutsiders(t *testing.T) {
	svc, _, _ := newTestService(t)

	appointment, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{
		DoctorID: 10,
		Date:     bookingDate,
		Type:     slots.ModalityOffline,
		Location: "Clinic A",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), patientIdentity(2), appointment.ID, StatusCancelledByPatient, nil)
	assert.ErrorIs(t, err, ErrNotParty)

	_, err = svc.UpdateStatus(context.Background(), doctorIdentity(99), appointment.ID, StatusCancelledByDoctor, nil)
	assert.ErrorIs(t, err, ErrNotParty)

	_, err = svc.UpdateStatus(context.Background(), hospitalIdentity(1), appointment.ID, StatusCompleted, nil)
	assert.ErrorIs(t, err, ErrNotParty)
}

func TestTerminalStatusIsFinal(t *testing.T) {
	svc, _, _ := newTestService(t)

	appointment, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{
		DoctorID: 10,
		Date:     bookingDate,
		Type:     slots.ModalityOffline,
		Location: "Clinic A",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), doctorIdentity(10), appointment.ID, StatusCompleted, nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), doctorIdentity(10), appointment.ID, StatusCancelledByDoctor, nil)
	assert.ErrorIs(t, err, ErrTerminalStatus)

	_, err = svc.UpdateStatus(context.Background(), patientIdentity(1), appointment.ID, StatusCancelledByPatient, nil)
	assert.ErrorIs(t, err, ErrTerminalStatus)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), patientIdentity(1), 1, "ON_HOLD", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// Cancelling an appointment does not release the slot; the doctor frees it
// explicitly by deleting or recreating availability.
func TestCancellationKeepsSlotBooked(t *testing.T) {
	svc, _, slotRepo := newTestService(t)
	slot := seedSlot(t, slotRepo, 3, slots.ClockTime(9*60), slots.ClockTime(10*60))

	appointment, err := svc.Create(context.Background(), patientIdentity(1), &CreateAppointmentRequest{SlotID: &slot.ID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), patientIdentity(1), appointment.ID, StatusCancelledByPatient, nil)
	require.NoError(t, err)

	stored, err := slotRepo.Peek(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slots.SlotBooked, stored.Status)
}
