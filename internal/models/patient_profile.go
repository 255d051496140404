package models

import "time"

type PatientProfile struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"userId"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name             string     `gorm:"size:100;not null" json:"name"`
	Phone            string     `gorm:"size:20" json:"phone"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"dateOfBirth,omitempty"`
	EmergencyContact string     `gorm:"size:20" json:"emergencyContact"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
