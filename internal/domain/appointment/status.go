package appointment

import (
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Live() bool {
	return s != StatusCancelled
}

var (
	ErrInvalidState = httperr.New(httperr.KindConflict, "INVALID_STATE", "The appointment is no longer scheduled.")
	ErrNotFound     = httperr.New(httperr.KindNotFound, "APPOINTMENT_NOT_FOUND", "Appointment not found.")
	ErrIntegrity    = httperr.New(httperr.KindIntegrity, "INTEGRITY_FAILURE", "The booking could not be completed.")
)

// ===============================
// Validations
// ===============================

// CanCancel: only scheduled appointments can be cancelled.
func CanCancel(current Status) error {
	if current != StatusScheduled {
		return ErrInvalidState
	}
	return nil
}

// CanComplete: only scheduled appointments can be completed.
func CanComplete(current Status) error {
	if current != StatusScheduled {
		return ErrInvalidState
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}

var ErrInvalidStatus = httperr.Validation("INVALID_STATUS", "Status must be SCHEDULED, CANCELLED or COMPLETED.")

// ParseStatus accepts any letter case. An empty string means no filter.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case "", StatusScheduled, StatusCancelled, StatusCompleted:
		return st, nil
	}
	return "", ErrInvalidStatus
}
