package account

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type ResetPassword struct {
	users user.Repository
	audit *audit.Dispatcher
}

func NewResetPassword(users user.Repository, audit *audit.Dispatcher) *ResetPassword {
	return &ResetPassword{users: users, audit: audit}
}

// Execute sets a new password for the account behind email. Only the account
// owner or an admin may do so.
func (uc *ResetPassword) Execute(
	ctx context.Context,
	actor role.Identity,
	email string,
	newPassword string,
) error {

	if len(newPassword) < user.MinPasswordLength {
		return user.ErrWeakPassword
	}

	u, err := uc.users.FindByEmail(ctx, validators.NormalizeEmail(email))
	if err != nil {
		return err
	}

	if !actor.Is(role.Admin) && actor.UserID != u.ID {
		return auth.ErrForbidden
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := uc.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(actor.UserID),
		Action:   audit.ActionPasswordReset,
		Entity:   "user",
		EntityID: audit.Ref(u.ID),
	})
	return nil
}
