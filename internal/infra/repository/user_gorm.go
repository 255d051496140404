package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *UserGormRepository) CreateUser(
	ctx context.Context,
	u *models.User,
	patient *models.PatientProfile,
	doctor *models.DoctorProfile,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if isUniqueViolation(err) {
				return user.ErrDuplicateEmail
			}
			return err
		}

		if patient != nil {
			patient.UserID = u.ID
			if err := tx.Omit(clause.Associations).Create(patient).Error; err != nil {
				return err
			}
		}
		if doctor != nil {
			doctor.UserID = u.ID
			if err := tx.Omit(clause.Associations).Create(doctor).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserGormRepository) FindByEmail(
	ctx context.Context,
	email string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error; err != nil {
		return nil, notFound(err, user.ErrNotFound)
	}
	return &u, nil
}

func (r *UserGormRepository) FindByID(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, user.ErrNotFound)
	}
	return &u, nil
}

func (r *UserGormRepository) UpdatePassword(
	ctx context.Context,
	userID uint,
	hash string,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserGormRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// --------------------------------------------------
// Deletion
// --------------------------------------------------

func (r *UserGormRepository) DeleteUser(
	ctx context.Context,
	userID uint,
	now time.Time,
) (user.DeleteReport, error) {

	var report user.DeleteReport

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&u, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		report.Deleted = true
		report.Role = u.Role

		switch role.Role(u.Role) {
		case role.Patient:
			var p models.PatientProfile
			err := tx.Where("user_id = ?", userID).First(&p).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				if err := purgeAppointments(tx, &report, "patient_id", p.ID, now); err != nil {
					return err
				}
				if err := tx.Delete(&models.PatientProfile{}, p.ID).Error; err != nil {
					return err
				}
			}

		case role.Doctor:
			var d models.DoctorProfile
			err := tx.Where("user_id = ?", userID).First(&d).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				if err := purgeAppointments(tx, &report, "doctor_id", d.ID, now); err != nil {
					return err
				}
				res := tx.Where("doctor_id = ?", d.ID).Delete(&models.Slot{})
				if res.Error != nil {
					return res.Error
				}
				report.RemovedSlots = int(res.RowsAffected)
				if err := tx.Delete(&models.DoctorProfile{}, d.ID).Error; err != nil {
					return err
				}
			}
		}

		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return user.DeleteReport{}, err
	}
	return report, nil
}

// purgeAppointments cancels the scheduled appointments matching column = id
// through the lifecycle transition, frees their slots and then removes every
// matching appointment. A booking that commits after the lock is caught by
// the RETURNING on the delete and gets its slot freed too.
func purgeAppointments(
	tx *gorm.DB,
	report *user.DeleteReport,
	column string,
	id uint,
	now time.Time,
) error {

	var scheduled []models.Appointment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(column+" = ? AND status = ?", id, string(appointment.StatusScheduled)).
		Find(&scheduled).Error; err != nil {
		return err
	}

	var ids, slotIDs []uint
	for i := range scheduled {
		ap := &scheduled[i]
		if err := appointment.Cancel(ap, now); err != nil {
			continue
		}
		ids = append(ids, ap.ID)
		slotIDs = append(slotIDs, ap.SlotID)
	}

	if len(ids) > 0 {
		if err := tx.Model(&models.Appointment{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":       string(appointment.StatusCancelled),
				"cancelled_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}
	}

	var removed []models.Appointment
	res := tx.Clauses(clause.Returning{Columns: []clause.Column{
		{Name: "id"}, {Name: "slot_id"}, {Name: "status"},
	}}).Where(column+" = ?", id).Delete(&removed)
	if res.Error != nil {
		return res.Error
	}
	report.RemovedAppointments = int(res.RowsAffected)

	for _, ap := range removed {
		if appointment.Status(ap.Status) == appointment.StatusScheduled {
			ids = append(ids, ap.ID)
			slotIDs = append(slotIDs, ap.SlotID)
		}
	}

	if len(slotIDs) > 0 {
		if err := tx.Model(&models.Slot{}).
			Where("id IN ?", slotIDs).
			Updates(map[string]any{"occupied": false, "updated_at": now}).Error; err != nil {
			return err
		}
	}

	report.CancelledAppointments = len(ids)
	report.CancelledIDs = ids
	return nil
}

// --------------------------------------------------
// Profiles
// --------------------------------------------------

func (r *UserGormRepository) FindPatientByID(
	ctx context.Context,
	id uint,
) (*models.PatientProfile, error) {

	var p models.PatientProfile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, user.ErrPatientNotFound)
	}
	return &p, nil
}

func (r *UserGormRepository) FindPatientByUserID(
	ctx context.Context,
	userID uint,
) (*models.PatientProfile, error) {

	var p models.PatientProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&p).Error; err != nil {
		return nil, notFound(err, user.ErrPatientNotFound)
	}
	return &p, nil
}

func (r *UserGormRepository) FindDoctorByID(
	ctx context.Context,
	id uint,
) (*models.DoctorProfile, error) {

	var d models.DoctorProfile
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err, user.ErrDoctorNotFound)
	}
	return &d, nil
}

func (r *UserGormRepository) FindDoctorByUserID(
	ctx context.Context,
	userID uint,
) (*models.DoctorProfile, error) {

	var d models.DoctorProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&d).Error; err != nil {
		return nil, notFound(err, user.ErrDoctorNotFound)
	}
	return &d, nil
}

func (r *UserGormRepository) ListDoctors(ctx context.Context) ([]models.DoctorProfile, error) {
	var doctors []models.DoctorProfile
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *UserGormRepository) ListPatients(ctx context.Context) ([]models.PatientProfile, error) {
	var patients []models.PatientProfile
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *UserGormRepository) UpdateDoctorProfile(
	ctx context.Context,
	d *models.DoctorProfile,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.DoctorProfile{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"name":             d.Name,
			"specialization":   d.Specialization,
			"qualification":    d.Qualification,
			"experience_years": d.ExperienceYears,
			"consultation_fee": d.ConsultationFee,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrDoctorNotFound
	}
	return nil
}

// Compile-time check
var _ user.Repository = (*UserGormRepository)(nil)
