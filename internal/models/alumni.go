package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alumni is a graduate who posts referral opportunities for their institution.
type Alumni struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	FirstName           string                      `gorm:"size:20;not null" json:"first_name"`
	LastName            string                      `gorm:"size:20;not null" json:"last_name"`
	Email               string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	InstitutionID       uint                        `gorm:"index;not null" json:"institution_id"`
	Institution         Institution                 `json:"institution"`
	Company             string                      `gorm:"size:120" json:"company"`
	JobTitle            string                      `gorm:"size:120" json:"job_title"`
	YearsOfExperience   int                         `json:"years_of_experience"`
	Skills              datatypes.JSONSlice[string] `json:"skills"`
	ReferralPreferences string                      `gorm:"type:text" json:"referral_preferences"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// TableName keeps the plural table name stable.
func (Alumni) TableName() string {
	return "alumni"
}

// FullName joins the first and last name.
func (a Alumni) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
