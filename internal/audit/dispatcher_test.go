package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []models.AuditLog
	fail    bool
}

func (s *recordingSink) CreateAuditLog(_ context.Context, entry *models.AuditLog) error {
	if s.fail {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *recordingSink) ListAuditLogs(context.Context, Filter) ([]models.AuditLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries, int64(len(s.entries)), nil
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(New(sink), zerolog.Nop())

	for i := uint(1); i <= 10; i++ {
		d.Dispatch(Event{
			ActorID:  Ref(i),
			Action:   ActionAppointmentCreated,
			Entity:   "appointment",
			EntityID: Ref(i * 10),
			Metadata: map[string]any{"slotId": i},
		})
	}
	d.Close()

	require.Len(t, sink.entries, 10)
	first := sink.entries[0]
	assert.Equal(t, ActionAppointmentCreated, first.Action)
	assert.Equal(t, uint(1), *first.ActorID)
	assert.JSONEq(t, `{"slotId":1}`, first.Metadata)
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(New(sink), zerolog.Nop())
	d.Close()

	assert.NotPanics(t, func() {
		d.Dispatch(Event{Action: ActionUserDeleted})
	})
	d.Close()
	assert.Empty(t, sink.entries)
}

func TestSinkFailureDoesNotStopWorker(t *testing.T) {
	sink := &recordingSink{fail: true}
	d := NewDispatcher(New(sink), zerolog.Nop())

	d.Dispatch(Event{Action: ActionPasswordReset})
	d.Dispatch(Event{Action: ActionPasswordReset})
	d.Close()

	assert.Empty(t, sink.entries)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: ActionUserCreated})
	d.Close()
}
