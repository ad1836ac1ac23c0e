package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carewell/scheduling-platform/internal/slots"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec querier) *PostgresRepository {
	if exec == nil {
		panic("appointments: exec required")
	}
	return &PostgresRepository{pool: exec}
}

const appointmentColumns = `id, patient_id, doctor_id, appointment_date, status, modality, location, video_link, notes, slot_id, created_at, updated_at`

// Create inserts an appointment without a slot reference.
func (r *PostgresRepository) Create(ctx context.Context, appointment *Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, status, modality, location, video_link, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Status,
		appointment.Type,
		appointment.Location,
		appointment.VideoLink,
		appointment.Notes,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// CreateWithSlot books the slot and inserts the appointment in one
// transaction. The conditional UPDATE is the mutual-exclusion token: when it
// touches zero rows another booking already won and nothing is inserted.
func (r *PostgresRepository) CreateWithSlot(ctx context.Context, appointment *Appointment, slotID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	book := `
		UPDATE slots
		SET status = 'BOOKED', updated_at = now()
		WHERE id = $1 AND status = 'AVAILABLE'
		RETURNING doctor_id, slot_date, modality, video_link, location
	`
	var (
		slotDate time.Time
		modality slots.Modality
	)
	var videoLink, location string
	err = tx.QueryRow(ctx, book, slotID).Scan(
		&appointment.DoctorID,
		&slotDate,
		&modality,
		&videoLink,
		&location,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: book slot: %w", err)
	}

	if !appointment.Date.IsZero() && !sameDate(appointment.Date, slotDate) {
		return ErrDateOutsideSlot
	}
	appointment.Date = slotDate
	if appointment.Type == "" {
		appointment.Type = modality
	}
	if appointment.VideoLink == "" {
		appointment.VideoLink = videoLink
	}
	if appointment.Location == "" {
		appointment.Location = location
	}
	appointment.SlotID = &slotID

	insert := `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, status, modality, location, video_link, notes, slot_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, insert,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Status,
		appointment.Type,
		appointment.Location,
		appointment.VideoLink,
		appointment.Notes,
		slotID,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert booked: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit booking: %w", err)
	}
	return nil
}

// ListByPatient returns the patient's appointments ordered by date.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date, id
	`
	return r.queryList(ctx, query, patientID)
}

// ListByDoctor returns the doctor's appointments ordered by date.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY appointment_date, id
	`
	return r.queryList(ctx, query, doctorID)
}

// ListByHospital returns appointments across every doctor employed by the
// hospital.
func (r *PostgresRepository) ListByHospital(ctx context.Context, hospitalID int64) ([]Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date, a.status, a.modality, a.location, a.video_link, a.notes, a.slot_id, a.created_at, a.updated_at
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE d.hospital_id = $1
		ORDER BY a.appointment_date, a.id
	`
	return r.queryList(ctx, query, hospitalID)
}

// FindForPatient fetches an appointment the patient is party to.
func (r *PostgresRepository) FindForPatient(ctx context.Context, id, patientID int64) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND patient_id = $2
	`
	return r.queryOne(ctx, query, id, patientID)
}

// FindForDoctor fetches an appointment the doctor is party to.
func (r *PostgresRepository) FindForDoctor(ctx context.Context, id, doctorID int64) (*Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1 AND doctor_id = $2
	`
	return r.queryOne(ctx, query, id, doctorID)
}

// UpdateStatus sets the status and optionally replaces the notes.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status Status, notes *string) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $2, notes = COALESCE($3, notes), updated_at = now()
		WHERE id = $1
		RETURNING ` + appointmentColumns + `
	`
	return r.queryOne(ctx, query, id, status, notes)
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*Appointment, error) {
	var a Appointment
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&a.Status,
		&a.Type,
		&a.Location,
		&a.VideoLink,
		&a.Notes,
		&a.SlotID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotParty
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, arg any) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID,
			&a.PatientID,
			&a.DoctorID,
			&a.Date,
			&a.Status,
			&a.Type,
			&a.Location,
			&a.VideoLink,
			&a.Notes,
			&a.SlotID,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
