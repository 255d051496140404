package memory

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func (s *Store) CreateUser(
	_ context.Context,
	u *models.User,
	patient *models.PatientProfile,
	doctor *models.DoctorProfile,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emailIndex[u.Email]; taken {
		return user.ErrDuplicateEmail
	}

	now := s.now()
	u.ID = s.id("users")
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	s.users[u.ID] = &stored
	s.emailIndex[u.Email] = u.ID

	if patient != nil {
		patient.ID = s.id("patients")
		patient.UserID = u.ID
		patient.CreatedAt, patient.UpdatedAt = now, now
		p := *patient
		s.patients[p.ID] = &p
	}
	if doctor != nil {
		doctor.ID = s.id("doctors")
		doctor.UserID = u.ID
		doctor.CreatedAt, doctor.UpdatedAt = now, now
		d := *doctor
		s.doctors[d.ID] = &d
	}
	return nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *Store) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID uint, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteUser(_ context.Context, userID uint, now time.Time) (user.DeleteReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return user.DeleteReport{}, nil
	}
	report := user.DeleteReport{Deleted: true, Role: u.Role}

	switch role.Role(u.Role) {
	case role.Patient:
		if p := s.patientByUser(userID); p != nil {
			s.purgeAppointments(&report, now, func(ap *models.Appointment) bool {
				return ap.PatientID == p.ID
			})
			delete(s.patients, p.ID)
		}
	case role.Doctor:
		if d := s.doctorByUser(userID); d != nil {
			s.purgeAppointments(&report, now, func(ap *models.Appointment) bool {
				return ap.DoctorID == d.ID
			})
			for id, sl := range s.slots {
				if sl.DoctorID == d.ID {
					delete(s.slotKeys, slotKey{sl.DoctorID, sl.Date, sl.StartTime})
					delete(s.slots, id)
					report.RemovedSlots++
				}
			}
			delete(s.doctors, d.ID)
		}
	}

	delete(s.emailIndex, u.Email)
	delete(s.users, userID)
	return report, nil
}

// purgeAppointments cancels live matches through the lifecycle transition,
// freeing their slots, then drops every match. Write lock must be held.
func (s *Store) purgeAppointments(report *user.DeleteReport, now time.Time, match func(*models.Appointment) bool) {
	for id, ap := range s.appointments {
		if !match(ap) {
			continue
		}
		if appointment.Status(ap.Status) == appointment.StatusScheduled {
			if err := s.cancelLocked(ap, now); err == nil {
				report.CancelledAppointments++
				report.CancelledIDs = append(report.CancelledIDs, id)
			}
		}
		if s.liveBySlot[ap.SlotID] == id {
			delete(s.liveBySlot, ap.SlotID)
		}
		delete(s.appointments, id)
		report.RemovedAppointments++
	}
}

func (s *Store) patientByUser(userID uint) *models.PatientProfile {
	for _, p := range s.patients {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Store) doctorByUser(userID uint) *models.DoctorProfile {
	for _, d := range s.doctors {
		if d.UserID == userID {
			return d
		}
	}
	return nil
}

func (s *Store) FindPatientByID(_ context.Context, id uint) (*models.PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, user.ErrPatientNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) FindPatientByUserID(_ context.Context, userID uint) (*models.PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.patientByUser(userID)
	if p == nil {
		return nil, user.ErrPatientNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) FindDoctorByID(_ context.Context, id uint) (*models.DoctorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, user.ErrDoctorNotFound
	}
	out := *d
	return &out, nil
}

func (s *Store) FindDoctorByUserID(_ context.Context, userID uint) (*models.DoctorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := s.doctorByUser(userID)
	if d == nil {
		return nil, user.ErrDoctorNotFound
	}
	out := *d
	return &out, nil
}

func (s *Store) ListDoctors(_ context.Context) ([]models.DoctorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DoctorProfile, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListPatients(_ context.Context) ([]models.PatientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PatientProfile, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateDoctorProfile(_ context.Context, d *models.DoctorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.doctors[d.ID]
	if !ok {
		return user.ErrDoctorNotFound
	}
	d.UpdatedAt = s.now()
	d.UserID = cur.UserID
	d.CreatedAt = cur.CreatedAt
	updated := *d
	s.doctors[d.ID] = &updated
	return nil
}
