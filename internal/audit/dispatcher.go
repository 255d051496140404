package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	ActionUserCreated          = "user_created"
	ActionUserDeleted          = "user_deleted"
	ActionPasswordReset        = "password_reset"
	ActionSlotCreated          = "slot_created"
	ActionAppointmentCreated   = "appointment_created"
	ActionAppointmentConflict  = "appointment_conflict"
	ActionAppointmentRollback  = "appointment_rollback"
	ActionAppointmentCancelled = "appointment_cancelled"
	ActionAppointmentCompleted = "appointment_completed"
	ActionSlotsReconciled      = "slots_reconciled"
)

type Event struct {
	ActorID  *uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Dispatcher writes audit events off the request path. When the queue is
// full events are dropped and logged; auditing never fails a request.
type Dispatcher struct {
	logger *Logger
	log    zerolog.Logger
	queue  chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(logger *Logger, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.logger.Log(ctx, ev); err != nil {
			d.log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	defer func() {
		// dispatch after Close
		if recover() != nil {
			d.log.Warn().Str("action", ev.Action).Msg("audit dispatcher closed, dropping event")
		}
	}()

	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

func Ref(id uint) *uint {
	return &id
}
