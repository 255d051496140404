package account

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type Profile struct {
	User    *models.User
	Patient *models.PatientProfile
	Doctor  *models.DoctorProfile
}

type Me struct {
	users user.Repository
}

func NewMe(users user.Repository) *Me {
	return &Me{users: users}
}

// Execute loads the caller. A token whose user was deleted since issue
// yields NOT_FOUND.
func (uc *Me) Execute(ctx context.Context, actor role.Identity) (*Profile, error) {
	u, err := uc.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	out := &Profile{User: u}
	switch actor.Role {
	case role.Patient:
		out.Patient, err = uc.users.FindPatientByUserID(ctx, u.ID)
	case role.Doctor:
		out.Doctor, err = uc.users.FindDoctorByUserID(ctx, u.ID)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
