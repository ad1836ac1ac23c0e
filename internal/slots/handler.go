package slots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

// Handler handles HTTP requests for slots
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new slots handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type slotPayload struct {
	Date      string    `json:"date"`
	Start     ClockTime `json:"start_time"`
	End       ClockTime `json:"end_time"`
	Type      Modality  `json:"type"`
	VideoLink string    `json:"video_link"`
	Location  string    `json:"location"`
}

func (p *slotPayload) parseDate() (time.Time, error) {
	if p.Date == "" {
		return time.Time{}, ErrDateRequired
	}
	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return time.Time{}, ErrDateRequired
	}
	return date, nil
}

// CreateSlot handles POST /slots requests.
func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}

	var payload slotPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode slot request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	date, err := payload.parseDate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := &CreateSlotRequest{
		Date:      date,
		Start:     payload.Start,
		End:       payload.End,
		Type:      payload.Type,
		VideoLink: payload.VideoLink,
		Location:  payload.Location,
	}
	slot, err := h.service.Create(r.Context(), caller, req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

// ListSlots handles GET /doctors/{doctorID}/slots requests.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := strconv.ParseInt(chi.URLParam(r, "doctorID"), 10, 64)
	if err != nil || doctorID <= 0 {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	listing, err := h.service.ListForDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list slots", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list slots", http.StatusInternalServerError)
		return
	}
	if listing == nil {
		listing = []Slot{}
	}

	writeJSON(w, http.StatusOK, listing)
}

// UpdateSlot handles PUT /slots/{slotID} requests.
func (h *Handler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	slotID, err := strconv.ParseInt(chi.URLParam(r, "slotID"), 10, 64)
	if err != nil || slotID <= 0 {
		http.Error(w, "invalid slot id", http.StatusBadRequest)
		return
	}

	var payload slotPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("failed to decode slot request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	date, err := payload.parseDate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := &UpdateSlotRequest{
		Date:      date,
		Start:     payload.Start,
		End:       payload.End,
		Type:      payload.Type,
		VideoLink: payload.VideoLink,
		Location:  payload.Location,
	}
	slot, err := h.service.Update(r.Context(), caller, slotID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// DeleteSlot handles DELETE /slots/{slotID} requests.
func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	slotID, err := strconv.ParseInt(chi.URLParam(r, "slotID"), 10, 64)
	if err != nil || slotID <= 0 {
		http.Error(w, "invalid slot id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), caller, slotID); err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "slot deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDateRequired),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrInvalidModality):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDoctorNotFound), errors.Is(err, ErrSlotNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSlotConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrSlotNotAvailable):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("slot operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
