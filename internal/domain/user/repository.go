package user

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// DeleteReport describes what a user deletion cascaded into.
type DeleteReport struct {
	Deleted               bool   `json:"deleted"`
	Role                  string `json:"role,omitempty"`
	CancelledAppointments int    `json:"cancelledAppointments"`
	CancelledIDs          []uint `json:"cancelledAppointmentIds,omitempty"`
	RemovedAppointments   int    `json:"removedAppointments"`
	RemovedSlots          int    `json:"removedSlots"`
}

// Repository is the credential store.
type Repository interface {
	// -------- Users --------
	// CreateUser stores the user and, for patients and doctors, the matching
	// profile in one transaction. A taken email yields ErrDuplicateEmail.
	CreateUser(
		ctx context.Context,
		u *models.User,
		patient *models.PatientProfile,
		doctor *models.DoctorProfile,
	) error

	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	ListUsers(ctx context.Context) ([]models.User, error)

	// DeleteUser is idempotent. Scheduled appointments of the user's profile
	// are cancelled (freeing their slots) before the profile, its
	// appointments and, for doctors, its slots are removed.
	DeleteUser(ctx context.Context, userID uint, now time.Time) (DeleteReport, error)

	// -------- Profiles --------
	FindPatientByID(ctx context.Context, id uint) (*models.PatientProfile, error)
	FindPatientByUserID(ctx context.Context, userID uint) (*models.PatientProfile, error)
	FindDoctorByID(ctx context.Context, id uint) (*models.DoctorProfile, error)
	FindDoctorByUserID(ctx context.Context, userID uint) (*models.DoctorProfile, error)
	ListDoctors(ctx context.Context) ([]models.DoctorProfile, error)
	ListPatients(ctx context.Context) ([]models.PatientProfile, error)
	UpdateDoctorProfile(ctx context.Context, d *models.DoctorProfile) error
}
