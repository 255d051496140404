package account

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/ratelimit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type Login struct {
	users    user.Repository
	tokens   *auth.TokenService
	throttle ratelimit.LoginThrottle
}

func NewLogin(
	users user.Repository,
	tokens *auth.TokenService,
	throttle ratelimit.LoginThrottle,
) *Login {
	if throttle == nil {
		throttle = ratelimit.NopThrottle{}
	}
	return &Login{
		users:    users,
		tokens:   tokens,
		throttle: throttle,
	}
}

// Execute reports an unknown email and a wrong password as distinct errors.
// Repeated wrong passwords lock the account for the throttle window.
func (uc *Login) Execute(ctx context.Context, email, password string) (*Session, error) {
	email = validators.NormalizeEmail(email)

	if err := uc.throttle.Allow(ctx, email); err != nil {
		return nil, err
	}

	u, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNoSuchUser
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		uc.throttle.RecordFailure(ctx, email)
		return nil, user.ErrBadPassword
	}
	uc.throttle.Reset(ctx, email)

	token, err := uc.tokens.Issue(u.ID, role.Role(u.Role))
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}
