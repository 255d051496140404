package appointment

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ===============================
// Transitions
// ===============================

var guards = map[Status]func(Status) error{
	StatusCancelled: CanCancel,
	StatusCompleted: CanComplete,
}

// Cancel moves a scheduled appointment to CANCELLED. The caller frees the
// slot in the same unit of work.
func Cancel(ap *models.Appointment, now time.Time) error {
	return transition(ap, StatusCancelled, &ap.CancelledAt, now)
}

// Complete moves a scheduled appointment to COMPLETED. The slot stays
// occupied.
func Complete(ap *models.Appointment, now time.Time) error {
	return transition(ap, StatusCompleted, &ap.CompletedAt, now)
}

// transition leaves ap untouched when the guard rejects the move.
func transition(ap *models.Appointment, to Status, stamp **time.Time, now time.Time) error {
	if err := guards[to](Status(ap.Status)); err != nil {
		return err
	}

	at := now
	ap.Status = string(to)
	*stamp = &at
	return nil
}
