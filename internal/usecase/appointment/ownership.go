package appointment

import (
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// authorize checks that actor may change ap. Relations must be loaded.
func authorize(actor role.Identity, ap *models.Appointment, patientMay bool) error {
	switch actor.Role {
	case role.Admin:
		return nil
	case role.Doctor:
		if ap.Doctor != nil && ap.Doctor.UserID == actor.UserID {
			return nil
		}
	case role.Patient:
		if patientMay && ap.Patient != nil && ap.Patient.UserID == actor.UserID {
			return nil
		}
	}
	return auth.ErrForbidden
}
