package slots

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SlotStatus is the reservation state of a slot. It is a separate vocabulary
// from appointment status: a slot only knows whether it can still be taken.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotBooked    SlotStatus = "BOOKED"
)

// Modality is the delivery mode of a slot or appointment.
type Modality string

const (
	ModalityOnline  Modality = "ONLINE"
	ModalityOffline Modality = "OFFLINE"
)

// Valid reports whether the modality is a registered value.
func (m Modality) Valid() bool {
	return m == ModalityOnline || m == ModalityOffline
}

// ClockTime is a time of day in minutes since midnight. It marshals as
// "HH:MM" on the wire and is stored as an integer column.
type ClockTime int

// ParseClock parses "HH:MM" into a ClockTime.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("slots: parse clock %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Slot is a doctor-published reservable time window.
type Slot struct {
	ID        int64      `json:"id"`
	DoctorID  int64      `json:"doctor_id"`
	Date      time.Time  `json:"date"`
	Start     ClockTime  `json:"start_time"`
	End       ClockTime  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	Type      Modality   `json:"type"`
	VideoLink string     `json:"video_link,omitempty"`
	Location  string     `json:"location,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateSlotRequest carries validated input for publishing a slot.
type CreateSlotRequest struct {
	Date      time.Time
	Start     ClockTime
	End       ClockTime
	Type      Modality
	VideoLink string
	Location  string
}

// Validate rejects malformed input before the store is touched.
func (r *CreateSlotRequest) Validate() error {
	if r.Date.IsZero() {
		return ErrDateRequired
	}
	if r.Start >= r.End {
		return ErrInvalidTimeRange
	}
	if !r.Type.Valid() {
		return ErrInvalidModality
	}
	return nil
}

// UpdateSlotRequest is a full replacement of a slot's editable fields.
type UpdateSlotRequest struct {
	Date      time.Time
	Start     ClockTime
	End       ClockTime
	Type      Modality
	VideoLink string
	Location  string
}

func (r *UpdateSlotRequest) Validate() error {
	req := CreateSlotRequest{Date: r.Date, Start: r.Start, End: r.End, Type: r.Type}
	return req.Validate()
}
