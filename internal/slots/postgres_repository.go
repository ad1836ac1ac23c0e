package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores slots in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("slots: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec querier) *PostgresRepository {
	if exec == nil {
		panic("slots: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// Create inserts an AVAILABLE slot unless an overlapping slot already exists
// for the doctor on that date. The overlap predicate runs inside the INSERT
// so two concurrent creates cannot both pass the check.
func (r *PostgresRepository) Create(ctx context.Context, slot *Slot) error {
	query := `
		INSERT INTO slots (doctor_id, slot_date, start_min, end_min, status, modality, video_link, location)
		SELECT $1, $2, $3, $4, 'AVAILABLE', $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM slots
			WHERE doctor_id = $1
			  AND slot_date = $2
			  AND start_min < $4
			  AND end_min > $3
		)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		slot.DoctorID,
		slot.Date,
		slot.Start,
		slot.End,
		slot.Type,
		slot.VideoLink,
		slot.Location,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSlotConflict
		}
		return fmt.Errorf("slots: insert failed: %w", err)
	}
	slot.Status = SlotAvailable
	return nil
}

// FindByIDForDoctor fetches a slot owned by the given doctor.
func (r *PostgresRepository) FindByIDForDoctor(ctx context.Context, id, doctorID int64) (*Slot, error) {
	query := `
		SELECT id, doctor_id, slot_date, start_min, end_min, status, modality, video_link, location, created_at, updated_at
		FROM slots
		WHERE id = $1 AND doctor_id = $2
	`
	var slot Slot
	err := r.pool.QueryRow(ctx, query, id, doctorID).Scan(
		&slot.ID,
		&slot.DoctorID,
		&slot.Date,
		&slot.Start,
		&slot.End,
		&slot.Status,
		&slot.Type,
		&slot.VideoLink,
		&slot.Location,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("slots: select failed: %w", err)
	}
	return &slot, nil
}

// Update rewrites the editable fields of a slot that is still AVAILABLE and
// whose new range does not collide with the doctor's other slots. A zero-row
// update after the service's pre-checks means a concurrent writer won.
func (r *PostgresRepository) Update(ctx context.Context, slot *Slot) error {
	query := `
		UPDATE slots
		SET slot_date = $3, start_min = $4, end_min = $5, modality = $6, video_link = $7, location = $8, updated_at = now()
		WHERE id = $1 AND doctor_id = $2 AND status = 'AVAILABLE'
		  AND NOT EXISTS (
			SELECT 1 FROM slots other
			WHERE other.doctor_id = $2
			  AND other.slot_date = $3
			  AND other.id <> $1
			  AND other.start_min < $5
			  AND other.end_min > $4
		  )
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.Date,
		slot.Start,
		slot.End,
		slot.Type,
		slot.VideoLink,
		slot.Location,
	).Scan(&slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSlotConflict
		}
		return fmt.Errorf("slots: update failed: %w", err)
	}
	return nil
}

// Delete removes a slot while it is still AVAILABLE. Booked slots stay put
// so an existing appointment is never orphaned.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM slots WHERE id = $1 AND status = 'AVAILABLE'`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("slots: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSlotNotAvailable
	}
	return nil
}

// ListByDoctor returns every slot of a doctor, any status, ordered by date
// then start time.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]Slot, error) {
	query := `
		SELECT id, doctor_id, slot_date, start_min, end_min, status, modality, video_link, location, created_at, updated_at
		FROM slots
		WHERE doctor_id = $1
		ORDER BY slot_date, start_min
	`
	rows, err := r.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("slots: list failed: %w", err)
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(
			&slot.ID,
			&slot.DoctorID,
			&slot.Date,
			&slot.Start,
			&slot.End,
			&slot.Status,
			&slot.Type,
			&slot.VideoLink,
			&slot.Location,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("slots: scan failed: %w", err)
		}
		result = append(result, slot)
	}
	return result, rows.Err()
}
