package models

import (
	"errors"
	"fmt"
)

// ErrFieldNotAllowed is returned when an update request contains a field the
// role may not mutate. The whole update is rejected, not filtered.
var ErrFieldNotAllowed = errors.New("field not allowed")

// Role describes one of the three account kinds. Each role has its own
// collection, its own token signing secret and its own set of fields a
// generic update may touch. A token signed for one role never verifies
// against another role's gate.
type Role struct {
	Name           string
	Collection     string
	TokenSecretEnv string

	allowedUpdates map[string]bool

	// HasBlockFlag: login/self-update/self-delete are refused while blocked.
	HasBlockFlag bool
	// HasActivation: accounts start pending and are activated by an admin.
	HasActivation bool
	// HasResetFlow: the email password-reset flow is available.
	HasResetFlow bool
}

var (
	AdminRole = &Role{
		Name:           "admin",
		Collection:     "admins",
		TokenSecretEnv: "ADMIN_TOKEN_SECRET",
		allowedUpdates: fieldSet(
			"name", "email", "password", "gender", "pictureUrl",
			"address", "city", "phoneNumber", "dateOfBirth",
		),
	}

	DoctorRole = &Role{
		Name:           "doctor",
		Collection:     "doctors",
		TokenSecretEnv: "DOCTOR_TOKEN_SECRET",
		allowedUpdates: fieldSet(
			"name", "email", "password", "gender", "pictureUrl",
			"address", "phoneNumber", "clinicAddress", "clinicName",
			"workHours", "rate", "specialization",
		),
		HasActivation: true,
	}

	PatientRole = &Role{
		Name:           "patient",
		Collection:     "patients",
		TokenSecretEnv: "PATIENT_TOKEN_SECRET",
		allowedUpdates: fieldSet(
			"name", "email", "password", "gender", "pictureUrl",
			"address", "city", "phoneNumber", "dateOfBirth",
			"weight", "height", "bloodType",
		),
		HasBlockFlag: true,
		HasResetFlow: true,
	}
)

// Roles lists every known role descriptor.
var Roles = []*Role{AdminRole, DoctorRole, PatientRole}

func fieldSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// AuthorizeUpdate checks every requested field against the role's allow-list.
// A single disallowed field rejects the entire update.
func (r *Role) AuthorizeUpdate(fields []string) error {
	for _, f := range fields {
		if !r.allowedUpdates[f] {
			return fmt.Errorf("%w: %s", ErrFieldNotAllowed, f)
		}
	}
	return nil
}
