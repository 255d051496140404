// Package memory is an in-process store guarded by a single mutex. It backs
// STORE_DRIVER=memory and the tests; every compare-and-set happens under the
// write lock.
package memory

import (
	"sync"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type Store struct {
	mu sync.RWMutex

	users        map[uint]*models.User
	emailIndex   map[string]uint
	patients     map[uint]*models.PatientProfile
	doctors      map[uint]*models.DoctorProfile
	slots        map[uint]*models.Slot
	slotKeys     map[slotKey]uint
	appointments map[uint]*models.Appointment
	liveBySlot   map[uint]uint // slot ID -> live appointment ID
	auditLogs    []models.AuditLog

	nextID map[string]uint
	now    func() time.Time
}

type slotKey struct {
	doctorID  uint
	date      string
	startTime string
}

func New() *Store {
	return &Store{
		users:        make(map[uint]*models.User),
		emailIndex:   make(map[string]uint),
		patients:     make(map[uint]*models.PatientProfile),
		doctors:      make(map[uint]*models.DoctorProfile),
		slots:        make(map[uint]*models.Slot),
		slotKeys:     make(map[slotKey]uint),
		appointments: make(map[uint]*models.Appointment),
		liveBySlot:   make(map[uint]uint),
		nextID:       make(map[string]uint),
		now:          time.Now,
	}
}

// id must be called with the write lock held.
func (s *Store) id(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

var (
	_ user.Repository        = (*Store)(nil)
	_ slot.Registry          = (*Store)(nil)
	_ appointment.Repository = (*Store)(nil)
	_ audit.Sink             = (*Store)(nil)
)
