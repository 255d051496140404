package dto

import (
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type AppointmentDTO struct {
	ID        uint   `json:"id"`
	SlotID    uint   `json:"slotId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Status    string `json:"status"`
	Symptoms  string `json:"symptoms"`

	PatientID   uint   `json:"patientId"`
	PatientName string `json:"patientName"`

	DoctorID       uint   `json:"doctorId"`
	DoctorName     string `json:"doctorName"`
	Specialization string `json:"specialization"`

	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewAppointmentDTO flattens whichever relations are loaded.
func NewAppointmentDTO(ap models.Appointment) AppointmentDTO {
	out := AppointmentDTO{
		ID:          ap.ID,
		SlotID:      ap.SlotID,
		Status:      ap.Status,
		Symptoms:    ap.Symptoms,
		PatientID:   ap.PatientID,
		DoctorID:    ap.DoctorID,
		CancelledAt: ap.CancelledAt,
		CompletedAt: ap.CompletedAt,
		CreatedAt:   ap.CreatedAt,
	}
	if ap.Slot != nil {
		out.Date = ap.Slot.Date
		out.StartTime = ap.Slot.StartTime
	}
	if ap.Patient != nil {
		out.PatientName = ap.Patient.Name
	}
	if ap.Doctor != nil {
		out.DoctorName = ap.Doctor.Name
		out.Specialization = ap.Doctor.Specialization
	}
	return out
}
