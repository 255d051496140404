package schedule

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type ListAvailable struct {
	slots slot.Registry
}

func NewListAvailable(slots slot.Registry) *ListAvailable {
	return &ListAvailable{slots: slots}
}

// Execute returns free slots by date, then start time. Unknown doctors have
// none.
func (uc *ListAvailable) Execute(ctx context.Context, doctorID uint) ([]models.Slot, error) {
	slots, err := uc.slots.ListAvailable(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	return slots, nil
}
