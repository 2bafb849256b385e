package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApplicationStatus is a state of the application pipeline.
type ApplicationStatus string

const (
	// ApplicationStatusApplied is the only initial state.
	ApplicationStatusApplied ApplicationStatus = "applied"
	// ApplicationStatusShortlisted marks the applicant as under consideration.
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	// ApplicationStatusReferred is terminal.
	ApplicationStatusReferred ApplicationStatus = "referred"
	// ApplicationStatusRejected is terminal.
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusShortlisted,
	ApplicationStatusReferred,
	ApplicationStatusRejected,
}

// IsTerminal reports whether no transition may leave this status.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusReferred || s == ApplicationStatusRejected
}

// IsValid reports whether the value is a known status.
func (s ApplicationStatus) IsValid() bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ProfileSnapshot is the applicant profile as it was when the application was created.
type ProfileSnapshot struct {
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	Email               string   `json:"email"`
	Branch              string   `json:"branch"`
	GraduationYear      int      `json:"graduation_year"`
	Skills              []string `json:"skills"`
	ProfileCompleteness int      `json:"profile_completeness"`
}

// ResumeSnapshot is the resume reference as it was when the application was created.
type ResumeSnapshot struct {
	URL        string     `json:"url"`
	PublicID   string     `json:"public_id"`
	UploadedAt *time.Time `json:"uploaded_at"`
}

// Application is a student's request for a referral on one opportunity.
// (OpportunityID, StudentID) is unique; snapshot columns are written once at creation.
type Application struct {
	ID              uint                                `gorm:"primaryKey" json:"id"`
	OpportunityID   uint                                `gorm:"not null;uniqueIndex:idx_applications_opportunity_student" json:"opportunity_id"`
	StudentID       uint                                `gorm:"not null;uniqueIndex:idx_applications_opportunity_student;index" json:"student_id"`
	AlumniID        uint                                `gorm:"not null;index" json:"alumni_id"`
	Status          ApplicationStatus                   `gorm:"size:16;not null;index" json:"status"`
	ProfileSnapshot datatypes.JSONType[ProfileSnapshot] `json:"profile_snapshot"`
	ResumeSnapshot  datatypes.JSONType[ResumeSnapshot]  `json:"resume_snapshot"`
	AppliedAt       time.Time                           `gorm:"not null;index" json:"applied_at"`
	ShortlistedAt   *time.Time                          `json:"shortlisted_at"`
	ReferredAt      *time.Time                          `json:"referred_at"`
	RejectedAt      *time.Time                          `json:"rejected_at"`
	CreatedAt       time.Time                           `json:"created_at"`
	UpdatedAt       time.Time                           `json:"updated_at"`
	Opportunity     Opportunity                         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"opportunity"`
	Student         Student                             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Alumni          Alumni                              `json:"alumni"`
	History         []ApplicationStatusHistory          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"history"`
}

// ApplicationStatusHistory is one append-only entry of an application's status trail.
type ApplicationStatusHistory struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ApplicationID uint              `gorm:"not null;index" json:"application_id"`
	Status        ApplicationStatus `gorm:"size:16;not null" json:"status"`
	Note          string            `gorm:"type:text" json:"note"`
	ChangedAt     time.Time         `gorm:"not null" json:"changed_at"`
}

// TableName keeps the history table name singular, matching the other audit tables.
func (ApplicationStatusHistory) TableName() string {
	return "application_status_history"
}
