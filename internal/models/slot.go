package models

import "time"

// Slot dates are "2006-01-02" and start times "15:04", so lexical order is
// chronological order.
type Slot struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	DoctorID uint           `gorm:"not null;uniqueIndex:idx_slot_doctor_date_start,priority:1" json:"doctorId"`
	Doctor   *DoctorProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Date      string `gorm:"size:10;not null;uniqueIndex:idx_slot_doctor_date_start,priority:2" json:"date"`
	StartTime string `gorm:"size:5;not null;uniqueIndex:idx_slot_doctor_date_start,priority:3" json:"startTime"`
	Occupied  bool   `gorm:"not null;default:false;index" json:"occupied"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
