package slot

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Registry owns slot occupancy. MarkOccupied is the only way a slot becomes
// occupied and must be a single atomic compare-and-set in the backing store.
type Registry interface {
	CreateSlot(ctx context.Context, s *models.Slot) error
	GetSlot(ctx context.Context, id uint) (*models.Slot, error)

	// ListAvailable returns unoccupied slots ordered by date, then start time.
	ListAvailable(ctx context.Context, doctorID uint) ([]models.Slot, error)

	// MarkOccupied reports false when the slot was already occupied.
	MarkOccupied(ctx context.Context, id uint) (bool, error)

	// MarkFree is idempotent.
	MarkFree(ctx context.Context, id uint) error

	// Reconcile sets every occupancy flag from the live appointments that
	// reference the slot and returns how many flags changed.
	Reconcile(ctx context.Context) (int64, error)
}
