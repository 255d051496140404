package appointment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
)

// ReconcileSlots repairs occupancy flags left inconsistent by a crash between
// reserving a slot and writing its appointment.
type ReconcileSlots struct {
	slots slot.Registry
	audit *audit.Dispatcher
}

func NewReconcileSlots(slots slot.Registry, audit *audit.Dispatcher) *ReconcileSlots {
	return &ReconcileSlots{slots: slots, audit: audit}
}

func (uc *ReconcileSlots) Execute(ctx context.Context) (int64, error) {
	changed, err := uc.slots.Reconcile(ctx)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		zerolog.Ctx(ctx).Warn().Int64("changed", changed).Msg("slot occupancy reconciled")
		uc.audit.Dispatch(audit.Event{
			Action:   audit.ActionSlotsReconciled,
			Entity:   "slot",
			Metadata: map[string]any{"changed": changed},
		})
	}
	return changed, nil
}
