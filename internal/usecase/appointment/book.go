package appointment

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/metrics"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	Actor role.Identity

	// PatientID may be left zero by a patient booking for themselves.
	PatientID uint
	DoctorID  uint
	SlotID    uint
	Symptoms  string
}

// ======================================================
// USE CASE
// ======================================================

// BookAppointment turns (patient, doctor, slot) into a committed appointment.
// The slot is reserved first with a compare-and-set; if the appointment write
// then fails the reservation is released before the error is returned.
type BookAppointment struct {
	users        user.Repository
	slots        slot.Registry
	appointments domain.Repository
	audit        *audit.Dispatcher
	metrics      *metrics.Metrics
}

func NewBookAppointment(
	users user.Repository,
	slots slot.Registry,
	appointments domain.Repository,
	audit *audit.Dispatcher,
	metrics *metrics.Metrics,
) *BookAppointment {
	return &BookAppointment{
		users:        users,
		slots:        slots,
		appointments: appointments,
		audit:        audit,
		metrics:      metrics,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	ap, err := uc.book(ctx, in)
	uc.metrics.ObserveBooking(outcome(err))
	return ap, err
}

func (uc *BookAppointment) book(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Who is this booking for
	// --------------------------------------------------
	patientID, err := uc.resolvePatient(ctx, in)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Patient, doctor and slot must exist
	// --------------------------------------------------
	patient, err := uc.users.FindPatientByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	doctor, err := uc.users.FindDoctorByID(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}

	sl, err := uc.slots.GetSlot(ctx, in.SlotID)
	if err != nil {
		return nil, err
	}
	if sl.DoctorID != doctor.ID {
		return nil, slot.ErrSlotNotFound
	}

	// --------------------------------------------------
	// 3. Reserve the slot
	// --------------------------------------------------
	reserved, err := uc.slots.MarkOccupied(ctx, sl.ID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		uc.conflict(in, patient.ID, sl.ID)
		return nil, slot.ErrSlotTaken
	}

	// --------------------------------------------------
	// 4. Write the appointment, or release the slot
	// --------------------------------------------------
	ap := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		SlotID:    sl.ID,
		Status:    string(domain.InitialStatus()),
		Symptoms:  in.Symptoms,
	}

	if err := uc.appointments.CreateAppointment(ctx, ap); err != nil {
		if errors.Is(err, domain.ErrSlotAlreadyBooked) {
			// the slot is held by a live appointment, so occupied is correct
			uc.conflict(in, patient.ID, sl.ID)
			return nil, slot.ErrSlotTaken
		}
		return nil, uc.rollback(ctx, in, sl.ID, err)
	}

	// --------------------------------------------------
	// 5. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(in.Actor.UserID),
		Action:   audit.ActionAppointmentCreated,
		Entity:   "appointment",
		EntityID: audit.Ref(ap.ID),
		Metadata: map[string]any{
			"patientId": patient.ID,
			"doctorId":  doctor.ID,
			"slotId":    sl.ID,
		},
	})

	sl.Occupied = true
	ap.Patient = patient
	ap.Doctor = doctor
	ap.Slot = sl
	return ap, nil
}

// resolvePatient applies the ownership rule: patients book only for their own
// profile, admins for anyone, doctors never.
func (uc *BookAppointment) resolvePatient(
	ctx context.Context,
	in BookAppointmentInput,
) (uint, error) {

	switch in.Actor.Role {
	case role.Admin:
		if in.PatientID == 0 {
			return 0, errPatientRequired
		}
		return in.PatientID, nil

	case role.Patient:
		own, err := uc.users.FindPatientByUserID(ctx, in.Actor.UserID)
		if err != nil {
			return 0, err
		}
		if in.PatientID != 0 && in.PatientID != own.ID {
			return 0, auth.ErrForbidden.WithMessage("Patients can only book for themselves.")
		}
		return own.ID, nil

	default:
		return 0, auth.ErrForbidden
	}
}

// rollback releases the reservation after a failed appointment write. The
// caller always gets an integrity failure; a release that also fails leaves
// the slot for Reconcile and is logged as such.
func (uc *BookAppointment) rollback(
	ctx context.Context,
	in BookAppointmentInput,
	slotID uint,
	cause error,
) error {

	log := zerolog.Ctx(ctx)
	freeErr := uc.slots.MarkFree(ctx, slotID)
	uc.metrics.ObserveRollback(freeErr == nil)

	if freeErr != nil {
		log.Error().
			Err(cause).
			AnErr("release_error", freeErr).
			Uint("slot_id", slotID).
			Msg("appointment write failed and slot release failed; slot left for reconcile")
	} else {
		log.Error().
			Err(cause).
			Uint("slot_id", slotID).
			Msg("appointment write failed; slot released")
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(in.Actor.UserID),
		Action:   audit.ActionAppointmentRollback,
		Entity:   "slot",
		EntityID: audit.Ref(slotID),
		Metadata: map[string]any{
			"released": freeErr == nil,
			"cause":    cause.Error(),
		},
	})

	return domain.ErrIntegrity
}

func (uc *BookAppointment) conflict(in BookAppointmentInput, patientID, slotID uint) {
	uc.audit.Dispatch(audit.Event{
		ActorID:  audit.Ref(in.Actor.UserID),
		Action:   audit.ActionAppointmentConflict,
		Entity:   "slot",
		EntityID: audit.Ref(slotID),
		Metadata: map[string]any{"patientId": patientID},
	})
}

var errPatientRequired = httperr.Validation("PATIENT_REQUIRED", "patientId is required.")

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.Is(err, slot.ErrSlotTaken):
		return metrics.OutcomeSlotTaken
	case errors.Is(err, domain.ErrIntegrity):
		return metrics.OutcomeIntegrityFailure
	}

	if be, ok := httperr.AsBusiness(err); ok {
		switch be.Kind {
		case httperr.KindNotFound:
			return metrics.OutcomeNotFound
		case httperr.KindAuthorization:
			return metrics.OutcomeForbidden
		}
	}
	return metrics.OutcomeError
}
