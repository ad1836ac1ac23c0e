package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnknownUser is returned when the user id has no account row.
var ErrUnknownUser = errors.New("identity: unknown user")

// Resolver maps an authenticated user id to a role-tagged identity.
type Resolver interface {
	Resolve(ctx context.Context, userID int64) (Identity, error)
}

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresResolver resolves identities from the account tables owned by the
// user-management system. Read-only access.
type PostgresResolver struct {
	pool rowQuerier
}

func NewPostgresResolver(pool *pgxpool.Pool) *PostgresResolver {
	if pool == nil {
		panic("identity: pgx pool required")
	}
	return &PostgresResolver{pool: pool}
}

func newPostgresResolverWithExec(exec rowQuerier) *PostgresResolver {
	if exec == nil {
		panic("identity: exec required")
	}
	return &PostgresResolver{pool: exec}
}

// Resolve loads the role tag and every role-specific id in one round trip.
func (r *PostgresResolver) Resolve(ctx context.Context, userID int64) (Identity, error) {
	query := `
		SELECT u.role,
		       COALESCE(p.id, 0),
		       COALESCE(d.id, 0),
		       COALESCE(h.id, 0)
		FROM users u
		LEFT JOIN patients p ON p.user_id = u.id
		LEFT JOIN doctors d ON d.user_id = u.id
		LEFT JOIN hospitals h ON h.user_id = u.id
		WHERE u.id = $1
	`
	id := Identity{UserID: userID}
	var role string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&role, &id.PatientID, &id.DoctorID, &id.HospitalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, fmt.Errorf("identity: resolve user %d: %w", userID, err)
	}
	id.Role = Role(role)
	return id, nil
}
