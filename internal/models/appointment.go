package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PatientID uint            `gorm:"not null;index" json:"patientId"`
	Patient   *PatientProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"patient,omitempty"`

	DoctorID uint           `gorm:"not null;index" json:"doctorId"`
	Doctor   *DoctorProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"doctor,omitempty"`

	// At most one non-cancelled appointment per slot.
	SlotID uint  `gorm:"not null;uniqueIndex:idx_appointment_live_slot,where:status <> 'CANCELLED'" json:"slotId"`
	Slot   *Slot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"slot,omitempty"`

	Status   string `gorm:"size:20;not null;default:'SCHEDULED';index" json:"status"`
	Symptoms string `gorm:"size:500" json:"symptoms"`

	CancelledAt *time.Time `json:"cancelledAt"`
	CompletedAt *time.Time `json:"completedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
