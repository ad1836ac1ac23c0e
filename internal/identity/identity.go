package identity

import "context"

// Role tags a caller identity. Each role carries its own id payload; the
// role tag is authoritative and resolved once at the request boundary.
type Role string

const (
	RolePatient  Role = "PATIENT"
	RoleDoctor   Role = "DOCTOR"
	RoleHospital Role = "HOSPITAL"
)

// Identity is the resolved caller: a role tag plus the ids that exist for
// that role. Ids are zero when the caller has no such identity.
type Identity struct {
	UserID     int64
	Role       Role
	PatientID  int64
	DoctorID   int64
	HospitalID int64
}

// IsPatient reports whether the caller has a patient identity.
func (id Identity) IsPatient() bool { return id.Role == RolePatient && id.PatientID != 0 }

// IsDoctor reports whether the caller has a doctor identity.
func (id Identity) IsDoctor() bool { return id.Role == RoleDoctor && id.DoctorID != 0 }

// IsHospital reports whether the caller has a hospital identity.
func (id Identity) IsHospital() bool { return id.Role == RoleHospital && id.HospitalID != 0 }

type ctxKey string

const identityKey ctxKey = "carewell.identity"

// WithIdentity stores the resolved identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the caller identity if present.
func FromContext(ctx context.Context) (Identity, bool) {
	val := ctx.Value(identityKey)
	if val == nil {
		return Identity{}, false
	}
	id, ok := val.(Identity)
	return id, ok && id.UserID != 0
}
