package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
)

type ListAppointments struct {
	users user.Repository
	repo  domain.Repository
}

func NewListAppointments(
	users user.Repository,
	repo domain.Repository,
) *ListAppointments {
	return &ListAppointments{
		users: users,
		repo:  repo,
	}
}

// Execute lists what the actor may see: patients and doctors their own
// appointments, admins all of them. Ordered by slot date and start time.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	actor role.Identity,
	status domain.Status,
) ([]dto.AppointmentDTO, error) {

	filter := domain.ListFilter{Status: status}

	switch actor.Role {
	case role.Patient:
		p, err := uc.users.FindPatientByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.PatientID = p.ID
	case role.Doctor:
		d, err := uc.users.FindDoctorByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.DoctorID = d.ID
	}

	appointments, err := uc.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.NewAppointmentDTO(ap))
	}

	return out, nil
}
