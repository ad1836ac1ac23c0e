package identity

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	id := Identity{UserID: 42, Role: RoleDoctor, DoctorID: 7}
	ctx := WithIdentity(context.Background(), id)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected identity in context")
	}
	if got != id {
		t.Fatalf("expected %+v, got %+v", id, got)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no identity in empty context")
	}
}

func TestFromContextZeroUser(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{})
	if _, ok := FromContext(ctx); ok {
		t.Fatal("zero identity should not resolve")
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		name     string
		id       Identity
		patient  bool
		doctor   bool
		hospital bool
	}{
		{"patient", Identity{Role: RolePatient, PatientID: 3}, true, false, false},
		{"doctor", Identity{Role: RoleDoctor, DoctorID: 5}, false, true, false},
		{"hospital", Identity{Role: RoleHospital, HospitalID: 9}, false, false, true},
		{"role without payload", Identity{Role: RolePatient}, false, false, false},
		{"payload without role", Identity{PatientID: 3}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.IsPatient(); got != tt.patient {
				t.Errorf("IsPatient() = %v, want %v", got, tt.patient)
			}
			if got := tt.id.IsDoctor(); got != tt.doctor {
				t.Errorf("IsDoctor() = %v, want %v", got, tt.doctor)
			}
			if got := tt.id.IsHospital(); got != tt.hospital {
				t.Errorf("IsHospital() = %v, want %v", got, tt.hospital)
			}
		})
	}
}
