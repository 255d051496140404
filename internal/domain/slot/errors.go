package slot

import "github.com/BruksfildServices01/clinic-scheduler/internal/httperr"

var (
	ErrSlotNotFound = httperr.New(httperr.KindNotFound, "SLOT_NOT_FOUND", "Slot not found.")
	ErrSlotTaken    = httperr.New(httperr.KindConflict, "SLOT_TAKEN", "This slot has already been booked.")
	ErrSlotExists   = httperr.New(httperr.KindConflict, "SLOT_EXISTS", "The doctor already has a slot at this time.")
	ErrInvalidDate  = httperr.Validation("INVALID_DATE_OR_TIME", "Date must be YYYY-MM-DD and start time HH:MM.")
	ErrSlotInPast   = httperr.Validation("SLOT_IN_PAST", "Slots cannot be created in the past.")
)
