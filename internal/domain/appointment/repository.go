package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ErrSlotAlreadyBooked is returned by CreateAppointment when another live
// appointment already references the slot.
var ErrSlotAlreadyBooked = errors.New("slot already has a live appointment")

type ListFilter struct {
	PatientID uint
	DoctorID  uint
	Status    Status
}

type Repository interface {
	// -------- Appointment (create) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// -------- Appointment (state change) --------
	// CancelAndRelease records the cancellation and frees the slot as one
	// atomic step.
	CancelAndRelease(
		ctx context.Context,
		id uint,
		now time.Time,
	) (*models.Appointment, error)

	Complete(
		ctx context.Context,
		id uint,
		now time.Time,
	) (*models.Appointment, error)

	// -------- Listing --------
	ListAppointments(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Appointment, error)
}
