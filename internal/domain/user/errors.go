package user

import (
	"net/http"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var (
	// Reported as 400, not 409, to keep the signup contract.
	ErrDuplicateEmail = httperr.New(httperr.KindConflict, "DUPLICATE_EMAIL", "An account with this email already exists.").WithStatus(http.StatusBadRequest)

	ErrNotFound        = httperr.New(httperr.KindNotFound, "NOT_FOUND", "User not found.")
	ErrNoSuchUser      = httperr.New(httperr.KindNotFound, "NO_SUCH_USER", "No account found with this email.")
	ErrBadPassword     = httperr.New(httperr.KindAuthentication, "BAD_PASSWORD", "Incorrect password.")
	ErrPatientNotFound = httperr.New(httperr.KindNotFound, "PATIENT_NOT_FOUND", "Patient not found.")
	ErrDoctorNotFound  = httperr.New(httperr.KindNotFound, "DOCTOR_NOT_FOUND", "Doctor not found.")

	ErrInvalidRole     = httperr.Validation("INVALID_ROLE", "Role must be PATIENT, DOCTOR or ADMIN.")
	ErrRoleNotAllowed  = httperr.New(httperr.KindAuthorization, "ROLE_NOT_ALLOWED", "This role cannot be self-registered.")
	ErrWeakPassword    = httperr.Validation("WEAK_PASSWORD", "Password must have at least 6 characters.")
	ErrInvalidBirthday = httperr.Validation("INVALID_DATE_OF_BIRTH", "Date of birth must be YYYY-MM-DD.")
)

const MinPasswordLength = 6
