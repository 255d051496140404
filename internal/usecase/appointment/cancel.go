package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type CancelAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCancelAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	metrics *metrics.Metrics,
) *CancelAppointment {
	return &CancelAppointment{
		repo:    repo,
		audit:   audit,
		metrics: metrics,
		now:     time.Now,
	}
}

// Execute cancels a scheduled appointment. The owning patient, the owning
// doctor and admins may cancel; the slot is freed in the same step.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor role.Identity,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := authorize(actor, ap, true); err != nil {
		return nil, err
	}

	if err := domain.CanCancel(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	ap, err = uc.repo.CancelAndRelease(ctx, appointmentID, uc.now())
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveTransition(ap.Status)
	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(actor.UserID),
		Action:   audit.ActionAppointmentCancelled,
		Entity:   "appointment",
		EntityID: audit.Ref(ap.ID),
		Metadata: map[string]any{"slotId": ap.SlotID},
	})

	return ap, nil
}
