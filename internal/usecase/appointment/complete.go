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

type CompleteAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	metrics *metrics.Metrics,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:    repo,
		audit:   audit,
		metrics: metrics,
		now:     time.Now,
	}
}

// Execute marks a scheduled appointment completed. Only the owning doctor or
// an admin may do this.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	actor role.Identity,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := authorize(actor, ap, false); err != nil {
		return nil, err
	}

	ap, err = uc.repo.Complete(ctx, appointmentID, uc.now())
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveTransition(ap.Status)
	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(actor.UserID),
		Action:   audit.ActionAppointmentCompleted,
		Entity:   "appointment",
		EntityID: audit.Ref(ap.ID),
	})

	return ap, nil
}
