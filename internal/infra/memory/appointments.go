package memory

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func (s *Store) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[ap.PatientID]; !ok {
		return user.ErrPatientNotFound
	}
	if _, ok := s.doctors[ap.DoctorID]; !ok {
		return user.ErrDoctorNotFound
	}
	if _, ok := s.slots[ap.SlotID]; !ok {
		return slot.ErrSlotNotFound
	}
	if appointment.Status(ap.Status).Live() {
		if _, taken := s.liveBySlot[ap.SlotID]; taken {
			return appointment.ErrSlotAlreadyBooked
		}
	}

	now := s.now()
	ap.ID = s.id("appointments")
	ap.CreatedAt, ap.UpdatedAt = now, now
	stored := *ap
	stored.Patient, stored.Doctor, stored.Slot = nil, nil, nil
	s.appointments[ap.ID] = &stored
	if appointment.Status(ap.Status).Live() {
		s.liveBySlot[ap.SlotID] = ap.ID
	}
	return nil
}

func (s *Store) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ap, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	return s.withRelations(ap), nil
}

func (s *Store) CancelAndRelease(_ context.Context, id uint, now time.Time) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	if err := s.cancelLocked(ap, now); err != nil {
		return nil, err
	}
	return s.withRelations(ap), nil
}

// cancelLocked applies the transition and frees the slot. Write lock must be
// held.
func (s *Store) cancelLocked(ap *models.Appointment, now time.Time) error {
	if err := appointment.Cancel(ap, now); err != nil {
		return err
	}
	ap.UpdatedAt = now

	if s.liveBySlot[ap.SlotID] == ap.ID {
		delete(s.liveBySlot, ap.SlotID)
	}
	if sl, ok := s.slots[ap.SlotID]; ok {
		sl.Occupied = false
		sl.UpdatedAt = now
	}
	return nil
}

func (s *Store) Complete(_ context.Context, id uint, now time.Time) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ap, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	if err := appointment.Complete(ap, now); err != nil {
		return nil, err
	}
	ap.UpdatedAt = now
	return s.withRelations(ap), nil
}

func (s *Store) ListAppointments(_ context.Context, f appointment.ListFilter) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Appointment{}
	for _, ap := range s.appointments {
		if f.PatientID != 0 && ap.PatientID != f.PatientID {
			continue
		}
		if f.DoctorID != 0 && ap.DoctorID != f.DoctorID {
			continue
		}
		if f.Status != "" && appointment.Status(ap.Status) != f.Status {
			continue
		}
		out = append(out, *s.withRelations(ap))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Slot, out[j].Slot
		if a != nil && b != nil {
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			if a.StartTime != b.StartTime {
				return a.StartTime < b.StartTime
			}
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// withRelations returns a copy with patient, doctor and slot attached.
func (s *Store) withRelations(ap *models.Appointment) *models.Appointment {
	out := *ap
	if p, ok := s.patients[ap.PatientID]; ok {
		cp := *p
		out.Patient = &cp
	}
	if d, ok := s.doctors[ap.DoctorID]; ok {
		cp := *d
		out.Doctor = &cp
	}
	if sl, ok := s.slots[ap.SlotID]; ok {
		cp := *sl
		out.Slot = &cp
	}
	return &out
}
