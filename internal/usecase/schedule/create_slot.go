package schedule

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type CreateSlotInput struct {
	Actor role.Identity

	// DoctorID is required for admins; doctors always create on their own
	// schedule.
	DoctorID  uint
	Date      string
	StartTime string
}

type CreateSlot struct {
	users    user.Repository
	slots    slot.Registry
	audit    *audit.Dispatcher
	timezone string
	now      func() time.Time
}

func NewCreateSlot(
	users user.Repository,
	slots slot.Registry,
	audit *audit.Dispatcher,
	tz string,
) *CreateSlot {
	return &CreateSlot{
		users:    users,
		slots:    slots,
		audit:    audit,
		timezone: tz,
		now:      time.Now,
	}
}

var errDoctorRequired = httperr.Validation("DOCTOR_REQUIRED", "doctorId is required.")

func (uc *CreateSlot) Execute(ctx context.Context, in CreateSlotInput) (*models.Slot, error) {
	if !validators.IsDate(in.Date) || !validators.IsClock(in.StartTime) {
		return nil, slot.ErrInvalidDate
	}

	doctorID, err := uc.resolveDoctor(ctx, in)
	if err != nil {
		return nil, err
	}

	start, err := timezone.SlotStart(in.Date, in.StartTime, uc.timezone)
	if err != nil {
		return nil, slot.ErrInvalidDate
	}
	if !start.After(uc.now()) {
		return nil, slot.ErrSlotInPast
	}

	s := &models.Slot{
		DoctorID:  doctorID,
		Date:      in.Date,
		StartTime: in.StartTime,
	}
	if err := uc.slots.CreateSlot(ctx, s); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(in.Actor.UserID),
		Action:   audit.ActionSlotCreated,
		Entity:   "slot",
		EntityID: audit.Ref(s.ID),
		Metadata: map[string]any{"doctorId": doctorID, "date": s.Date, "startTime": s.StartTime},
	})

	return s, nil
}

func (uc *CreateSlot) resolveDoctor(ctx context.Context, in CreateSlotInput) (uint, error) {
	switch in.Actor.Role {
	case role.Admin:
		if in.DoctorID == 0 {
			return 0, errDoctorRequired
		}
		return in.DoctorID, nil

	case role.Doctor:
		own, err := uc.users.FindDoctorByUserID(ctx, in.Actor.UserID)
		if err != nil {
			return 0, err
		}
		if in.DoctorID != 0 && in.DoctorID != own.ID {
			return 0, auth.ErrForbidden.WithMessage("Doctors can only manage their own schedule.")
		}
		return own.ID, nil

	default:
		return 0, auth.ErrForbidden
	}
}
