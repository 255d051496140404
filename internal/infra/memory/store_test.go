package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

var ctx = context.Background()

func seedDoctor(t *testing.T, s *Store, email string) *models.DoctorProfile {
	t.Helper()
	d := &models.DoctorProfile{Name: "Dr " + email}
	require.NoError(t, s.CreateUser(ctx, &models.User{Email: email, Role: string(role.Doctor)}, nil, d))
	return d
}

func seedPatient(t *testing.T, s *Store, email string) *models.PatientProfile {
	t.Helper()
	p := &models.PatientProfile{Name: email}
	require.NoError(t, s.CreateUser(ctx, &models.User{Email: email, Role: string(role.Patient)}, p, nil))
	return p
}

func seedSlot(t *testing.T, s *Store, doctorID uint, date, start string) *models.Slot {
	t.Helper()
	sl := &models.Slot{DoctorID: doctorID, Date: date, StartTime: start}
	require.NoError(t, s.CreateSlot(ctx, sl))
	return sl
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := New()
	seedPatient(t, s, "a@clinic.test")

	err := s.CreateUser(ctx, &models.User{Email: "a@clinic.test", Role: string(role.Doctor)}, nil, &models.DoctorProfile{})
	assert.True(t, errors.Is(err, user.ErrDuplicateEmail))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	doctors, _ := s.ListDoctors(ctx)
	assert.Empty(t, doctors, "loser must not leave an orphaned profile")
}

func TestConcurrentSignupSameEmail(t *testing.T) {
	s := New()
	const n = 20

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateUser(ctx, &models.User{Email: "race@clinic.test", Role: string(role.Patient)}, &models.PatientProfile{Name: "r"}, nil)
			if err == nil {
				wins.Add(1)
				return
			}
			assert.True(t, errors.Is(err, user.ErrDuplicateEmail))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	patients, _ := s.ListPatients(ctx)
	assert.Len(t, patients, 1)
}

func TestMarkOccupiedIsCompareAndSet(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	sl := seedSlot(t, s, d.ID, "2026-06-01", "09:00")

	ok, err := s.MarkOccupied(ctx, sl.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MarkOccupied(ctx, sl.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.MarkFree(ctx, sl.ID))
	require.NoError(t, s.MarkFree(ctx, sl.ID))

	ok, err = s.MarkOccupied(ctx, sl.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.MarkOccupied(ctx, 999)
	assert.True(t, errors.Is(err, slot.ErrSlotNotFound))
}

func TestListAvailableOrdering(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	other := seedDoctor(t, s, "other@clinic.test")

	seedSlot(t, s, d.ID, "2026-06-02", "09:00")
	taken := seedSlot(t, s, d.ID, "2026-06-01", "08:00")
	seedSlot(t, s, d.ID, "2026-06-01", "14:30")
	seedSlot(t, s, d.ID, "2026-06-01", "09:15")
	seedSlot(t, s, other.ID, "2026-05-01", "07:00")

	_, err := s.MarkOccupied(ctx, taken.ID)
	require.NoError(t, err)

	got, err := s.ListAvailable(ctx, d.ID)
	require.NoError(t, err)

	var keys []string
	for _, sl := range got {
		keys = append(keys, sl.Date+" "+sl.StartTime)
	}
	assert.Equal(t, []string{"2026-06-01 09:15", "2026-06-01 14:30", "2026-06-02 09:00"}, keys)
}

func TestCreateSlotRejectsDuplicates(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	seedSlot(t, s, d.ID, "2026-06-01", "09:00")

	err := s.CreateSlot(ctx, &models.Slot{DoctorID: d.ID, Date: "2026-06-01", StartTime: "09:00"})
	assert.True(t, errors.Is(err, slot.ErrSlotExists))

	err = s.CreateSlot(ctx, &models.Slot{DoctorID: 404, Date: "2026-06-01", StartTime: "09:00"})
	assert.True(t, errors.Is(err, user.ErrDoctorNotFound))
}

func TestLiveAppointmentUniquePerSlot(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	p := seedPatient(t, s, "pat@clinic.test")
	sl := seedSlot(t, s, d.ID, "2026-06-01", "09:00")

	first := &models.Appointment{PatientID: p.ID, DoctorID: d.ID, SlotID: sl.ID, Status: string(appointment.StatusScheduled)}
	require.NoError(t, s.CreateAppointment(ctx, first))

	second := &models.Appointment{PatientID: p.ID, DoctorID: d.ID, SlotID: sl.ID, Status: string(appointment.StatusScheduled)}
	assert.True(t, errors.Is(s.CreateAppointment(ctx, second), appointment.ErrSlotAlreadyBooked))
}

func TestCancelAndReleaseFreesSlot(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	p := seedPatient(t, s, "pat@clinic.test")
	sl := seedSlot(t, s, d.ID, "2026-06-01", "09:00")

	_, err := s.MarkOccupied(ctx, sl.ID)
	require.NoError(t, err)
	ap := &models.Appointment{PatientID: p.ID, DoctorID: d.ID, SlotID: sl.ID, Status: string(appointment.StatusScheduled)}
	require.NoError(t, s.CreateAppointment(ctx, ap))

	now := time.Date(2026, 5, 30, 8, 0, 0, 0, time.UTC)
	cancelled, err := s.CancelAndRelease(ctx, ap.ID, now)
	require.NoError(t, err)
	assert.Equal(t, string(appointment.StatusCancelled), cancelled.Status)
	require.NotNil(t, cancelled.Slot)
	assert.False(t, cancelled.Slot.Occupied)

	_, err = s.CancelAndRelease(ctx, ap.ID, now)
	assert.True(t, errors.Is(err, appointment.ErrInvalidState))

	_, err = s.Complete(ctx, ap.ID, now)
	assert.True(t, errors.Is(err, appointment.ErrInvalidState))

	rebook := &models.Appointment{PatientID: p.ID, DoctorID: d.ID, SlotID: sl.ID, Status: string(appointment.StatusScheduled)}
	require.NoError(t, s.CreateAppointment(ctx, rebook))
	assert.NotEqual(t, ap.ID, rebook.ID)
}

func TestReconcileRepairsStrandedSlots(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	p := seedPatient(t, s, "pat@clinic.test")
	stranded := seedSlot(t, s, d.ID, "2026-06-01", "09:00")
	booked := seedSlot(t, s, d.ID, "2026-06-01", "10:00")

	// reservation without appointment, as after a crash
	_, err := s.MarkOccupied(ctx, stranded.ID)
	require.NoError(t, err)

	// appointment whose flag was lost
	require.NoError(t, s.CreateAppointment(ctx, &models.Appointment{
		PatientID: p.ID, DoctorID: d.ID, SlotID: booked.ID, Status: string(appointment.StatusScheduled),
	}))

	changed, err := s.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	got, _ := s.GetSlot(ctx, stranded.ID)
	assert.False(t, got.Occupied)
	got, _ = s.GetSlot(ctx, booked.ID)
	assert.True(t, got.Occupied)

	changed, err = s.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestDeleteDoctorCascades(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	p := seedPatient(t, s, "pat@clinic.test")
	sl := seedSlot(t, s, d.ID, "2026-06-01", "09:00")
	seedSlot(t, s, d.ID, "2026-06-01", "10:00")

	_, err := s.MarkOccupied(ctx, sl.ID)
	require.NoError(t, err)
	require.NoError(t, s.CreateAppointment(ctx, &models.Appointment{
		PatientID: p.ID, DoctorID: d.ID, SlotID: sl.ID, Status: string(appointment.StatusScheduled),
	}))

	report, err := s.DeleteUser(ctx, d.UserID, time.Now())
	require.NoError(t, err)
	assert.True(t, report.Deleted)
	assert.Equal(t, 1, report.CancelledAppointments)
	assert.Equal(t, 1, report.RemovedAppointments)
	assert.Equal(t, 2, report.RemovedSlots)

	avail, err := s.ListAvailable(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, avail)

	_, err = s.FindDoctorByID(ctx, d.ID)
	assert.True(t, errors.Is(err, user.ErrDoctorNotFound))

	again, err := s.DeleteUser(ctx, d.UserID, time.Now())
	require.NoError(t, err)
	assert.False(t, again.Deleted)
}

func TestDeletePatientFreesTheirSlots(t *testing.T) {
	s := New()
	d := seedDoctor(t, s, "doc@clinic.test")
	p := seedPatient(t, s, "pat@clinic.test")
	sl := seedSlot(t, s, d.ID, "2026-06-01", "09:00")

	_, err := s.MarkOccupied(ctx, sl.ID)
	require.NoError(t, err)
	require.NoError(t, s.CreateAppointment(ctx, &models.Appointment{
		PatientID: p.ID, DoctorID: d.ID, SlotID: sl.ID, Status: string(appointment.StatusScheduled),
	}))

	_, err = s.DeleteUser(ctx, p.UserID, time.Now())
	require.NoError(t, err)

	avail, err := s.ListAvailable(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, sl.ID, avail[0].ID)

	_, err = s.FindByEmail(ctx, "pat@clinic.test")
	assert.True(t, errors.Is(err, user.ErrNotFound))
}

func TestAuditLogPaging(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateAuditLog(ctx, &models.AuditLog{Action: audit.ActionAppointmentCreated, Entity: "appointment"}))
	}
	require.NoError(t, s.CreateAuditLog(ctx, &models.AuditLog{Action: audit.ActionUserDeleted, Entity: "user"}))

	logs, total, err := s.ListAuditLogs(ctx, audit.Filter{Entity: "appointment", Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, logs, 2)
	assert.Greater(t, logs[0].ID, logs[1].ID)

	logs, total, err = s.ListAuditLogs(ctx, audit.Filter{Action: audit.ActionUserDeleted, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Empty(t, logs)
}
