package models

import (
	"time"

	"gorm.io/datatypes"
)

// Student is an applicant account. Credentials live with the identity provider.
type Student struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	FirstName           string                      `gorm:"size:20;not null" json:"first_name"`
	LastName            string                      `gorm:"size:20;not null" json:"last_name"`
	Email               string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Image               string                      `gorm:"size:512" json:"image"`
	InstitutionID       *uint                       `gorm:"index" json:"institution_id"`
	Institution         *Institution                `json:"institution,omitempty"`
	Branch              string                      `gorm:"size:120" json:"branch"`
	GraduationYear      int                         `json:"graduation_year"`
	Skills              datatypes.JSONSlice[string] `json:"skills"`
	ProfileCompleteness int                         `gorm:"default:0" json:"profile_completeness"`
	ResumeURL           string                      `gorm:"size:512" json:"resume_url"`
	ResumePublicID      string                      `gorm:"size:255" json:"resume_public_id"`
	ResumeUploadedAt    *time.Time                  `json:"resume_uploaded_at"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// HasResume reports whether the student currently has a resume on file.
func (s Student) HasResume() bool {
	return s.ResumeURL != ""
}

// InstitutionMatchKey returns the student's institution match key, or "" when unaffiliated.
func (s Student) InstitutionMatchKey() string {
	if s.Institution == nil {
		return ""
	}
	return s.Institution.MatchKey
}

// FullName joins the first and last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
