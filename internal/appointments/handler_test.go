package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/slots"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

func newTestHandler() (*Handler, *InMemoryRepository, *slots.InMemoryRepository) {
	slotRepo := slots.NewInMemoryRepository()
	repo := NewInMemoryRepository(slotRepo)
	svc := NewService(repo, logging.Default(), nil)
	return NewHandler(svc, logging.Default()), repo, slotRepo
}

func withCaller(req *http.Request, caller identity.Identity) *http.Request {
	return req.WithContext(identity.WithIdentity(req.Context(), caller))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateAppointmentHandler(t *testing.T) {
	handler, _, _ := newTestHandler()

	body, _ := json.Marshal(map[string]any{
		"doctor_id": 7,
		"date":      "2024-09-17",
		"type":      "OFFLINE",
		"location":  "clinic A",
	})
	req := withCaller(httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body)), patientIdentity(1))
	w := httptest.NewRecorder()

	handler.CreateAppointment(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var appointment Appointment
	if err := json.NewDecoder(w.Body).Decode(&appointment); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if appointment.Status != StatusPending || appointment.PatientID != 1 {
		t.Fatalf("unexpected appointment: %+v", appointment)
	}
}

func TestCreateAppointmentHandlerSlotConflict(t *testing.T) {
	handler, _, slotRepo := newTestHandler()

	slot := seedSlot(t, slotRepo, 3, slots.ClockTime(600), slots.ClockTime(630))
	body := fmt.Sprintf(`{"slot_id":%d}`, slot.ID)

	req := withCaller(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body)), patientIdentity(1))
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("first booking failed with %d: %s", w.Code, w.Body.String())
	}

	req = withCaller(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body)), patientIdentity(2))
	w = httptest.NewRecorder()
	handler.CreateAppointment(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestCreateAppointmentHandlerValidation(t *testing.T) {
	handler, _, _ := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{"},
		{"missing doctor", `{"date":"2024-09-17","type":"ONLINE"}`},
		{"bad date", `{"doctor_id":1,"date":"17/09/2024","type":"ONLINE"}`},
		{"bad modality", `{"doctor_id":1,"date":"2024-09-17","type":"HYBRID"}`},
		{"bad slot id", `{"slot_id":-4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withCaller(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(tt.body)), patientIdentity(1))
			w := httptest.NewRecorder()
			handler.CreateAppointment(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestCreateAppointmentHandlerUnauthenticated(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestCreateAppointmentHandlerNonPatient(t *testing.T) {
	handler, _, _ := newTestHandler()

	body := `{"doctor_id":1,"date":"2024-09-17","type":"ONLINE"}`
	req := withCaller(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body)), doctorIdentity(1))
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestListAppointmentsHandler(t *testing.T) {
	handler, repo, _ := newTestHandler()
	ctx := context.Background()

	seed := &Appointment{PatientID: 1, DoctorID: 7, Date: bookingDate, Status: StatusPending, Type: slots.ModalityOffline}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := withCaller(httptest.NewRequest(http.MethodGet, "/appointments", nil), patientIdentity(1))
	w := httptest.NewRecorder()
	handler.ListAppointments(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var listing []Appointment
	if err := json.NewDecoder(w.Body).Decode(&listing); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(listing) != 1 || listing[0].PatientID != 1 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
}

func TestListAppointmentsHandlerUnknownRoleEmpty(t *testing.T) {
	handler, repo, _ := newTestHandler()
	ctx := context.Background()

	seed := &Appointment{PatientID: 1, DoctorID: 7, Date: bookingDate, Status: StatusPending, Type: slots.ModalityOffline}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	req := withCaller(httptest.NewRequest(http.MethodGet, "/appointments", nil), identity.Identity{UserID: 9, Role: "AUDITOR"})
	w := httptest.NewRecorder()
	handler.ListAppointments(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("expected empty listing, got %s", body)
	}
}

func TestUpdateStatusHandlerForbidden(t *testing.T) {
	handler, repo, _ := newTestHandler()
	ctx := context.Background()

	seed := &Appointment{PatientID: 1, DoctorID: 7, Date: bookingDate, Status: StatusPending, Type: slots.ModalityOffline}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body := `{"status":"CANCELLED_BY_PATIENT"}`
	req := withCaller(httptest.NewRequest(http.MethodPatch, "/appointments/1", strings.NewReader(body)), patientIdentity(2))
	req = withURLParam(req, "appointmentID", "1")
	w := httptest.NewRecorder()
	handler.UpdateAppointmentStatus(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestUpdateStatusHandlerTerminal(t *testing.T) {
	handler, repo, _ := newTestHandler()
	ctx := context.Background()

	seed := &Appointment{PatientID: 1, DoctorID: 7, Date: bookingDate, Status: StatusCompleted, Type: slots.ModalityOffline}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	body := `{"status":"CANCELLED_BY_DOCTOR"}`
	req := withCaller(httptest.NewRequest(http.MethodPatch, "/appointments/1", strings.NewReader(body)), doctorIdentity(7))
	req = withURLParam(req, "appointmentID", "1")
	w := httptest.NewRecorder()
	handler.UpdateAppointmentStatus(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
	}
}

func TestUpdateStatusHandlerBadID(t *testing.T) {
	handler, _, _ := newTestHandler()

	req := withCaller(httptest.NewRequest(http.MethodPatch, "/appointments/abc", strings.NewReader(`{"status":"COMPLETED"}`)), doctorIdentity(7))
	req = withURLParam(req, "appointmentID", "abc")
	w := httptest.NewRecorder()
	handler.UpdateAppointmentStatus(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
