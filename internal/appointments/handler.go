package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/slots"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type createPayload struct {
	DoctorID  int64          `json:"doctor_id"`
	Date      string         `json:"date"`
	Type      slots.Modality `json:"type"`
	Location  string         `json:"location"`
	VideoLink string         `json:"video_link"`
	Notes     string         `json:"notes"`
	SlotID    *int64         `json:"slot_id"`
}

type statusPayload struct {
	Status Status  `json:"status"`
	Notes  *string `json:"notes"`
}

// CreateAppointment handles POST /appointments requests.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode appointment request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var date time.Time
	if payload.Date != "" {
		parsed, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			http.Error(w, ErrDateRequired.Error(), http.StatusBadRequest)
			return
		}
		date = parsed
	}

	req := &CreateAppointmentRequest{
		DoctorID:  payload.DoctorID,
		Date:      date,
		Type:      payload.Type,
		Location:  payload.Location,
		VideoLink: payload.VideoLink,
		Notes:     payload.Notes,
		SlotID:    payload.SlotID,
	}
	appointment, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// ListAppointments handles GET /appointments requests. The result is scoped
// to the caller's role; no query parameters widen it.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}

	listing, err := h.service.ListForCaller(r.Context(), caller)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", caller.UserID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if listing == nil {
		listing = []Appointment{}
	}

	writeJSON(w, http.StatusOK, listing)
}

// UpdateAppointmentStatus handles PATCH /appointments/{appointmentID} requests.
func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	appointmentID, err := strconv.ParseInt(chi.URLParam(r, "appointmentID"), 10, 64)
	if err != nil || appointmentID <= 0 {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode status request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appointment, err := h.service.UpdateStatus(r.Context(), caller, appointmentID, payload.Status, payload.Notes)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, appointment)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDoctorRequired),
		errors.Is(err, ErrDateRequired),
		errors.Is(err, ErrInvalidModality),
		errors.Is(err, ErrInvalidSlotID),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrDateOutsideSlot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPatientNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSlotTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrTerminalStatus):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotParty):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		h.logger.Error("appointment operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
