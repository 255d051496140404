package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type fixture struct {
	store   *memory.Store
	doctor  *models.DoctorProfile
	doctorU role.Identity
	admin   role.Identity
	slot    *models.Slot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	du := &models.User{Email: "doc@clinic.test", Role: string(role.Doctor)}
	doctor := &models.DoctorProfile{Name: "Dr House"}
	require.NoError(t, store.CreateUser(ctx, du, nil, doctor))

	au := &models.User{Email: "admin@clinic.test", Role: string(role.Admin)}
	require.NoError(t, store.CreateUser(ctx, au, nil, nil))

	sl := &models.Slot{DoctorID: doctor.ID, Date: "2030-01-10", StartTime: "09:00"}
	require.NoError(t, store.CreateSlot(ctx, sl))

	return &fixture{
		store:   store,
		doctor:  doctor,
		doctorU: role.Identity{UserID: du.ID, Role: role.Doctor},
		admin:   role.Identity{UserID: au.ID, Role: role.Admin},
		slot:    sl,
	}
}

func (f *fixture) patient(t *testing.T, name string) (*models.PatientProfile, role.Identity) {
	t.Helper()
	u := &models.User{Email: name + "@clinic.test", Role: string(role.Patient)}
	p := &models.PatientProfile{Name: name}
	require.NoError(t, f.store.CreateUser(context.Background(), u, p, nil))
	return p, role.Identity{UserID: u.ID, Role: role.Patient}
}

func (f *fixture) book(m *metrics.Metrics) *BookAppointment {
	return NewBookAppointment(f.store, f.store, f.store, nil, m)
}

func (f *fixture) available(t *testing.T) []models.Slot {
	t.Helper()
	slots, err := f.store.ListAvailable(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	return slots
}

func TestBookHappyPath(t *testing.T) {
	f := newFixture(t)
	p, me := f.patient(t, "ana")

	ap, err := f.book(nil).Execute(context.Background(), BookAppointmentInput{
		Actor:    me,
		DoctorID: f.doctor.ID,
		SlotID:   f.slot.ID,
		Symptoms: "headache",
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, ap.PatientID)
	assert.Equal(t, string(domain.StatusScheduled), ap.Status)
	require.NotNil(t, ap.Slot)
	assert.True(t, ap.Slot.Occupied)
	assert.Empty(t, f.available(t))
}

func TestConcurrentBookingHasOneWinner(t *testing.T) {
	f := newFixture(t)
	uc := f.book(nil)
	const n = 25

	var patients []*models.PatientProfile
	for i := 0; i < n; i++ {
		p, _ := f.patient(t, fmt.Sprintf("p%d", i))
		patients = append(patients, p)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		taken  int
		others []error
	)
	for _, p := range patients {
		wg.Add(1)
		go func(patientID uint) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), BookAppointmentInput{
				Actor:     f.admin,
				PatientID: patientID,
				DoctorID:  f.doctor.ID,
				SlotID:    f.slot.ID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, slot.ErrSlotTaken):
				taken++
			default:
				others = append(others, err)
			}
		}(p.ID)
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, taken)

	live, err := f.store.ListAppointments(context.Background(), domain.ListFilter{Status: domain.StatusScheduled})
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

type failingAppointments struct {
	domain.Repository
}

func (failingAppointments) CreateAppointment(context.Context, *models.Appointment) error {
	return errors.New("connection reset by peer")
}

func TestBookRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	_, me := f.patient(t, "ana")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	uc := NewBookAppointment(f.store, f.store, failingAppointments{f.store}, nil, m)

	_, err := uc.Execute(context.Background(), BookAppointmentInput{
		Actor:    me,
		DoctorID: f.doctor.ID,
		SlotID:   f.slot.ID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIntegrity))

	be, ok := httperr.AsBusiness(err)
	require.True(t, ok)
	assert.Equal(t, 500, be.HTTPStatus())

	got := f.available(t)
	require.Len(t, got, 1, "slot must be bookable again")
	assert.Equal(t, f.slot.ID, got[0].ID)

	// and really bookable
	_, err = f.book(nil).Execute(context.Background(), BookAppointmentInput{
		Actor:    me,
		DoctorID: f.doctor.ID,
		SlotID:   f.slot.ID,
	})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "clinic_booking_rollbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookLiveAppointmentConflictKeepsSlot(t *testing.T) {
	f := newFixture(t)
	p, me := f.patient(t, "ana")
	ctx := context.Background()

	// flag out of sync with the live appointment
	require.NoError(t, f.store.CreateAppointment(ctx, &models.Appointment{
		PatientID: p.ID, DoctorID: f.doctor.ID, SlotID: f.slot.ID, Status: string(domain.StatusScheduled),
	}))

	_, err := f.book(nil).Execute(ctx, BookAppointmentInput{
		Actor:    me,
		DoctorID: f.doctor.ID,
		SlotID:   f.slot.ID,
	})
	assert.True(t, errors.Is(err, slot.ErrSlotTaken))

	sl, err := f.store.GetSlot(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.True(t, sl.Occupied)
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana, anaID := f.patient(t, "ana")
	bob, _ := f.patient(t, "bob")

	other := &models.DoctorProfile{Name: "Dr Who"}
	require.NoError(t, f.store.CreateUser(ctx, &models.User{Email: "who@clinic.test", Role: string(role.Doctor)}, nil, other))
	otherSlot := &models.Slot{DoctorID: other.ID, Date: "2030-01-10", StartTime: "09:00"}
	require.NoError(t, f.store.CreateSlot(ctx, otherSlot))

	tests := []struct {
		name string
		in   BookAppointmentInput
		want error
	}{
		{"patient for someone else", BookAppointmentInput{Actor: anaID, PatientID: bob.ID, DoctorID: f.doctor.ID, SlotID: f.slot.ID}, auth.ErrForbidden},
		{"doctor cannot book", BookAppointmentInput{Actor: f.doctorU, PatientID: ana.ID, DoctorID: f.doctor.ID, SlotID: f.slot.ID}, auth.ErrForbidden},
		{"admin without patient", BookAppointmentInput{Actor: f.admin, DoctorID: f.doctor.ID, SlotID: f.slot.ID}, errPatientRequired},
		{"unknown patient", BookAppointmentInput{Actor: f.admin, PatientID: 999, DoctorID: f.doctor.ID, SlotID: f.slot.ID}, errors.New("PATIENT_NOT_FOUND")},
		{"unknown doctor", BookAppointmentInput{Actor: anaID, DoctorID: 999, SlotID: f.slot.ID}, errors.New("DOCTOR_NOT_FOUND")},
		{"unknown slot", BookAppointmentInput{Actor: anaID, DoctorID: f.doctor.ID, SlotID: 999}, slot.ErrSlotNotFound},
		{"slot of another doctor", BookAppointmentInput{Actor: anaID, DoctorID: f.doctor.ID, SlotID: otherSlot.ID}, slot.ErrSlotNotFound},
	}

	uc := f.book(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want.Error(), err.Error())
		})
	}

	assert.Len(t, f.available(t), 1, "failed bookings must not reserve the slot")
}

func TestCancelThenRebook(t *testing.T) {
	f := newFixture(t)
	_, me := f.patient(t, "ana")
	ctx := context.Background()
	book := f.book(nil)

	first, err := book.Execute(ctx, BookAppointmentInput{Actor: me, DoctorID: f.doctor.ID, SlotID: f.slot.ID})
	require.NoError(t, err)

	cancelled, err := NewCancelAppointment(f.store, nil, nil).Execute(ctx, me, first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	second, err := book.Execute(ctx, BookAppointmentInput{Actor: me, DoctorID: f.doctor.ID, SlotID: f.slot.ID})
	require.NoError(t, err)
	assert.Equal(t, first.SlotID, second.SlotID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLifecycleOwnership(t *testing.T) {
	f := newFixture(t)
	_, ana := f.patient(t, "ana")
	_, bob := f.patient(t, "bob")
	ctx := context.Background()

	ap, err := f.book(nil).Execute(ctx, BookAppointmentInput{Actor: ana, DoctorID: f.doctor.ID, SlotID: f.slot.ID})
	require.NoError(t, err)

	other := &models.User{Email: "who@clinic.test", Role: string(role.Doctor)}
	require.NoError(t, f.store.CreateUser(ctx, other, nil, &models.DoctorProfile{Name: "Dr Who"}))
	otherDoctor := role.Identity{UserID: other.ID, Role: role.Doctor}

	cancel := NewCancelAppointment(f.store, nil, nil)
	complete := NewCompleteAppointment(f.store, nil, nil)

	_, err = cancel.Execute(ctx, bob, ap.ID)
	assert.True(t, errors.Is(err, auth.ErrForbidden))
	_, err = cancel.Execute(ctx, otherDoctor, ap.ID)
	assert.True(t, errors.Is(err, auth.ErrForbidden))
	_, err = complete.Execute(ctx, ana, ap.ID)
	assert.True(t, errors.Is(err, auth.ErrForbidden))

	done, err := complete.Execute(ctx, f.doctorU, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), done.Status)

	_, err = cancel.Execute(ctx, f.admin, ap.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = complete.Execute(ctx, f.admin, ap.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	_, err = cancel.Execute(ctx, f.admin, 999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListIsRoleScoped(t *testing.T) {
	f := newFixture(t)
	_, ana := f.patient(t, "ana")
	_, bob := f.patient(t, "bob")
	ctx := context.Background()

	later := &models.Slot{DoctorID: f.doctor.ID, Date: "2030-01-10", StartTime: "10:00"}
	require.NoError(t, f.store.CreateSlot(ctx, later))

	book := f.book(nil)
	_, err := book.Execute(ctx, BookAppointmentInput{Actor: bob, DoctorID: f.doctor.ID, SlotID: later.ID})
	require.NoError(t, err)
	_, err = book.Execute(ctx, BookAppointmentInput{Actor: ana, DoctorID: f.doctor.ID, SlotID: f.slot.ID})
	require.NoError(t, err)

	list := NewListAppointments(f.store, f.store)

	mine, err := list.Execute(ctx, ana, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ana", mine[0].PatientName)

	all, err := list.Execute(ctx, f.admin, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "09:00", all[0].StartTime)
	assert.Equal(t, "10:00", all[1].StartTime)

	doctors, err := list.Execute(ctx, f.doctorU, domain.StatusScheduled)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)
}

func TestReconcileSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.store.MarkOccupied(ctx, f.slot.ID)
	require.NoError(t, err)
	require.True(t, ok)

	changed, err := NewReconcileSlots(f.store, nil).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	assert.Len(t, f.available(t), 1)
}
