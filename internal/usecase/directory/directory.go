package directory

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type Directory struct {
	users user.Repository
}

func New(users user.Repository) *Directory {
	return &Directory{users: users}
}

func (d *Directory) Doctors(ctx context.Context) ([]models.DoctorProfile, error) {
	doctors, err := d.users.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []models.DoctorProfile{}
	}
	return doctors, nil
}

func (d *Directory) Patients(ctx context.Context) ([]models.PatientProfile, error) {
	patients, err := d.users.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	if patients == nil {
		patients = []models.PatientProfile{}
	}
	return patients, nil
}

// DoctorProfileInput replaces the placeholders set at signup. Nil fields are
// left unchanged.
type DoctorProfileInput struct {
	Name            *string
	Specialization  *string
	Qualification   *string
	ExperienceYears *int
	ConsultationFee *float64
}

var errNegativeValue = httperr.Validation("INVALID_PROFILE", "Experience and fee cannot be negative.")

func (d *Directory) UpdateOwnDoctorProfile(
	ctx context.Context,
	actor role.Identity,
	in DoctorProfileInput,
) (*models.DoctorProfile, error) {

	profile, err := d.users.FindDoctorByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		profile.Name = strings.TrimSpace(*in.Name)
	}
	if in.Specialization != nil {
		profile.Specialization = strings.TrimSpace(*in.Specialization)
	}
	if in.Qualification != nil {
		profile.Qualification = strings.TrimSpace(*in.Qualification)
	}
	if in.ExperienceYears != nil {
		if *in.ExperienceYears < 0 {
			return nil, errNegativeValue
		}
		profile.ExperienceYears = *in.ExperienceYears
	}
	if in.ConsultationFee != nil {
		if *in.ConsultationFee < 0 {
			return nil, errNegativeValue
		}
		profile.ConsultationFee = *in.ConsultationFee
	}

	if err := d.users.UpdateDoctorProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
