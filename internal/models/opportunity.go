package models

import (
	"time"

	"gorm.io/datatypes"
)

// OpportunityStatus is the lifecycle state of a referral posting.
type OpportunityStatus string

const (
	// OpportunityStatusOpen accepts applications.
	OpportunityStatusOpen OpportunityStatus = "open"
	// OpportunityStatusClosed is the soft-deleted state. There is no way back to open.
	OpportunityStatusClosed OpportunityStatus = "closed"
)

// Opportunity is a referral posting owned by a single alumnus.
type Opportunity struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	JobTitle        string                      `gorm:"size:255;not null" json:"job_title"`
	Description     string                      `gorm:"type:text;not null" json:"description"`
	RequiredSkills  datatypes.JSONSlice[string] `json:"required_skills"`
	ExperienceLevel string                      `gorm:"size:64;not null" json:"experience_level"`
	ReferralTarget  int                         `gorm:"not null;default:1" json:"referral_target"`
	AlumniID        uint                        `gorm:"index;not null" json:"alumni_id"`
	Alumni          Alumni                      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"alumni"`
	InstitutionID   uint                        `gorm:"index;not null" json:"institution_id"`
	Institution     Institution                 `json:"institution"`
	Status          OpportunityStatus           `gorm:"size:16;not null;index" json:"status"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// IsOpen reports whether the opportunity still accepts applications.
func (o Opportunity) IsOpen() bool {
	return o.Status == OpportunityStatusOpen
}

// IsOwnedBy reports whether the alumnus posted this opportunity.
func (o Opportunity) IsOwnedBy(alumniID uint) bool {
	return o.AlumniID == alumniID
}
