package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type SlotGormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSlotGormRepository(db *gorm.DB) *SlotGormRepository {
	return &SlotGormRepository{db: db, now: time.Now}
}

func (r *SlotGormRepository) CreateSlot(
	ctx context.Context,
	s *models.Slot,
) error {

	var doctors int64
	if err := r.db.WithContext(ctx).
		Model(&models.DoctorProfile{}).
		Where("id = ?", s.DoctorID).
		Count(&doctors).Error; err != nil {
		return err
	}
	if doctors == 0 {
		return user.ErrDoctorNotFound
	}

	s.Occupied = false
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error; err != nil {
		switch {
		case isUniqueViolation(err):
			return slot.ErrSlotExists
		case isForeignKeyViolation(err):
			return user.ErrDoctorNotFound
		}
		return err
	}
	return nil
}

func (r *SlotGormRepository) GetSlot(
	ctx context.Context,
	id uint,
) (*models.Slot, error) {

	var s models.Slot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err, slot.ErrSlotNotFound)
	}
	return &s, nil
}

func (r *SlotGormRepository) ListAvailable(
	ctx context.Context,
	doctorID uint,
) ([]models.Slot, error) {

	slots := []models.Slot{}
	if err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND occupied = ?", doctorID, false).
		Order("date ASC, start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// --------------------------------------------------
// Occupancy
// --------------------------------------------------

// MarkOccupied is a single conditional UPDATE; the row count decides the
// winner among concurrent bookers.
func (r *SlotGormRepository) MarkOccupied(
	ctx context.Context,
	id uint,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ? AND occupied = ?", id, false).
		Updates(map[string]any{"occupied": true, "updated_at": r.now()})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var exists int64
	if err := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ?", id).
		Count(&exists).Error; err != nil {
		return false, err
	}
	if exists == 0 {
		return false, slot.ErrSlotNotFound
	}
	return false, nil
}

func (r *SlotGormRepository) MarkFree(
	ctx context.Context,
	id uint,
) error {

	return r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ? AND occupied = ?", id, true).
		Updates(map[string]any{"occupied": false, "updated_at": r.now()}).Error
}

const reconcileSQL = `
UPDATE slots
SET occupied = live.booked, updated_at = ?
FROM (
	SELECT s.id, EXISTS (
		SELECT 1 FROM appointments a
		WHERE a.slot_id = s.id AND a.status <> 'CANCELLED'
	) AS booked
	FROM slots s
) AS live
WHERE slots.id = live.id AND slots.occupied <> live.booked`

func (r *SlotGormRepository) Reconcile(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(reconcileSQL, r.now())
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Compile-time check
var _ slot.Registry = (*SlotGormRepository)(nil)
