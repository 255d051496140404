package account

import (
	"context"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
)

type ListUsers struct {
	users user.Repository
}

func NewListUsers(users user.Repository) *ListUsers {
	return &ListUsers{users: users}
}

func (uc *ListUsers) Execute(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserDTOs(users), nil
}

// DeleteUser removes a user with its profile. Scheduled appointments are
// cancelled first so their slots are released; a doctor's slots go with the
// profile. Deleting an unknown user succeeds with Deleted=false.
type DeleteUser struct {
	users   user.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDeleteUser(users user.Repository, audit *audit.Dispatcher, metrics *metrics.Metrics) *DeleteUser {
	return &DeleteUser{users: users, audit: audit, metrics: metrics, now: time.Now}
}

func (uc *DeleteUser) Execute(
	ctx context.Context,
	actor role.Identity,
	userID uint,
) (user.DeleteReport, error) {

	report, err := uc.users.DeleteUser(ctx, userID, uc.now())
	if err != nil {
		return user.DeleteReport{}, err
	}

	// cascade cancels are reported like any other cancellation
	for _, id := range report.CancelledIDs {
		uc.metrics.ObserveTransition(string(appointment.StatusCancelled))
		uc.audit.Dispatch(audit.Event{
			ActorID:  audit.Ref(actor.UserID),
			Action:   audit.ActionAppointmentCancelled,
			Entity:   "appointment",
			EntityID: audit.Ref(id),
			Metadata: map[string]any{"reason": "user_deleted", "userId": userID},
		})
	}

	if report.Deleted {
		uc.audit.Dispatch(audit.Event{
			ActorID:  audit.Ref(actor.UserID),
			Action:   audit.ActionUserDeleted,
			Entity:   "user",
			EntityID: audit.Ref(userID),
			Metadata: report,
		})
	}
	return report, nil
}
