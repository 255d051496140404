package memory

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func (s *Store) CreateSlot(_ context.Context, sl *models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[sl.DoctorID]; !ok {
		return user.ErrDoctorNotFound
	}

	key := slotKey{sl.DoctorID, sl.Date, sl.StartTime}
	if _, taken := s.slotKeys[key]; taken {
		return slot.ErrSlotExists
	}

	now := s.now()
	sl.ID = s.id("slots")
	sl.Occupied = false
	sl.CreatedAt, sl.UpdatedAt = now, now
	stored := *sl
	s.slots[sl.ID] = &stored
	s.slotKeys[key] = sl.ID
	return nil
}

func (s *Store) GetSlot(_ context.Context, id uint) (*models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.slots[id]
	if !ok {
		return nil, slot.ErrSlotNotFound
	}
	out := *sl
	return &out, nil
}

func (s *Store) ListAvailable(_ context.Context, doctorID uint) ([]models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Slot{}
	for _, sl := range s.slots {
		if sl.DoctorID == doctorID && !sl.Occupied {
			out = append(out, *sl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) MarkOccupied(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok {
		return false, slot.ErrSlotNotFound
	}
	if sl.Occupied {
		return false, nil
	}
	sl.Occupied = true
	sl.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) MarkFree(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[id]; ok && sl.Occupied {
		sl.Occupied = false
		sl.UpdatedAt = s.now()
	}
	return nil
}

func (s *Store) Reconcile(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, sl := range s.slots {
		_, live := s.liveBySlot[id]
		if sl.Occupied != live {
			sl.Occupied = live
			sl.UpdatedAt = s.now()
			changed++
		}
	}
	return changed, nil
}
