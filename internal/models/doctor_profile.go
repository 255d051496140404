package models

import "time"

// DoctorProfile starts with placeholder values at signup; the doctor fills
// them in afterwards.
type DoctorProfile struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"userId"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name            string  `gorm:"size:100;not null" json:"name"`
	Specialization  string  `gorm:"size:100" json:"specialization"`
	Qualification   string  `gorm:"size:100" json:"qualification"`
	ExperienceYears int     `gorm:"default:0" json:"experienceYears"`
	ConsultationFee float64 `gorm:"default:0" json:"consultationFee"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
