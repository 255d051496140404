package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Appointment (create / read)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlotAlreadyBooked
		}
		return err
	}
	return nil
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	return r.load(r.db.WithContext(ctx), id)
}

func (r *AppointmentGormRepository) load(db *gorm.DB, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Slot").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return &ap, nil
}

// --------------------------------------------------
// Appointment (Cancel / Complete)
// --------------------------------------------------

func (r *AppointmentGormRepository) CancelAndRelease(
	ctx context.Context,
	id uint,
	now time.Time,
) (*models.Appointment, error) {

	var out *models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ap, err := lockAppointment(tx, id)
		if err != nil {
			return err
		}
		if err := domain.Cancel(ap, now); err != nil {
			return err
		}

		if err := tx.Model(&models.Appointment{}).
			Where("id = ?", ap.ID).
			Updates(map[string]any{
				"status":       ap.Status,
				"cancelled_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Slot{}).
			Where("id = ?", ap.SlotID).
			Updates(map[string]any{"occupied": false, "updated_at": now}).Error; err != nil {
			return err
		}

		out, err = r.load(tx, ap.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentGormRepository) Complete(
	ctx context.Context,
	id uint,
	now time.Time,
) (*models.Appointment, error) {

	var out *models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ap, err := lockAppointment(tx, id)
		if err != nil {
			return err
		}
		if err := domain.Complete(ap, now); err != nil {
			return err
		}

		if err := tx.Model(&models.Appointment{}).
			Where("id = ?", ap.ID).
			Updates(map[string]any{
				"status":       ap.Status,
				"completed_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}

		out, err = r.load(tx, ap.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockAppointment(tx *gorm.DB, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return &ap, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	filter domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins("JOIN slots ON slots.id = appointments.slot_id")

	if filter.PatientID != 0 {
		q = q.Where("appointments.patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != 0 {
		q = q.Where("appointments.doctor_id = ?", filter.DoctorID)
	}
	if filter.Status != "" {
		q = q.Where("appointments.status = ?", string(filter.Status))
	}

	apps := []models.Appointment{}
	if err := q.
		Preload("Patient").
		Preload("Doctor").
		Preload("Slot").
		Order("slots.date ASC, slots.start_time ASC, appointments.id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
