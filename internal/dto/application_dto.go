package dto

import (
	"time"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// EligibilityResponse reports whether a student may apply and, if not, the single reason why.
type EligibilityResponse struct {
	OpportunityID uint   `json:"opportunity_id"`
	Eligible      bool   `json:"eligible"`
	Reason        string `json:"reason,omitempty"`
	Message       string `json:"message,omitempty"`
}

// ApplicationTransitionRequest asks for a status change on an application.
type ApplicationTransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=shortlisted referred rejected"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

// ApplicationListRequest selects a page of the caller's applications.
type ApplicationListRequest struct {
	Page     int
	PageSize int
}

// OpportunitySummary is the opportunity display block embedded in application payloads.
type OpportunitySummary struct {
	ID              uint   `json:"id"`
	JobTitle        string `json:"job_title"`
	ExperienceLevel string `json:"experience_level"`
	Status          string `json:"status"`
	Institution     string `json:"institution"`
}

// StatusHistoryEntry is one element of an application's status trail.
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// ApplicationResponse serializes an application with its denormalized display fields and snapshots.
type ApplicationResponse struct {
	ID              uint                   `json:"id"`
	OpportunityID   uint                   `json:"opportunity_id"`
	StudentID       uint                   `json:"student_id"`
	AlumniID        uint                   `json:"alumni_id"`
	Status          string                 `json:"status"`
	Opportunity     OpportunitySummary     `json:"opportunity"`
	Alumni          AlumniSummary          `json:"alumni"`
	ProfileSnapshot models.ProfileSnapshot `json:"profile_snapshot"`
	ResumeSnapshot  models.ResumeSnapshot  `json:"resume_snapshot"`
	AppliedAt       time.Time              `json:"applied_at"`
	ShortlistedAt   *time.Time             `json:"shortlisted_at"`
	ReferredAt      *time.Time             `json:"referred_at"`
	RejectedAt      *time.Time             `json:"rejected_at"`
	StatusHistory   []StatusHistoryEntry   `json:"status_history"`
}

// StatusCounts holds the number of applications per status.
type StatusCounts struct {
	Applied     int64 `json:"applied"`
	Shortlisted int64 `json:"shortlisted"`
	Referred    int64 `json:"referred"`
	Rejected    int64 `json:"rejected"`
	Total       int64 `json:"total"`
}

// Add increments the bucket matching status.
func (c *StatusCounts) Add(status models.ApplicationStatus, n int64) {
	switch status {
	case models.ApplicationStatusApplied:
		c.Applied += n
	case models.ApplicationStatusShortlisted:
		c.Shortlisted += n
	case models.ApplicationStatusReferred:
		c.Referred += n
	case models.ApplicationStatusRejected:
		c.Rejected += n
	default:
		return
	}
	c.Total += n
}

// ApplicationBuckets partitions applications by status.
type ApplicationBuckets struct {
	Applied     []ApplicationResponse `json:"applied"`
	Shortlisted []ApplicationResponse `json:"shortlisted"`
	Referred    []ApplicationResponse `json:"referred"`
	Rejected    []ApplicationResponse `json:"rejected"`
}

// OwnerApplicationsView is what an alumnus sees for one of their opportunities.
type OwnerApplicationsView struct {
	Opportunity OpportunitySummary    `json:"opportunity"`
	Total       int                   `json:"total"`
	All         []ApplicationResponse `json:"all"`
	Grouped     ApplicationBuckets    `json:"grouped"`
	Counts      StatusCounts          `json:"counts"`
}

// StudentApplicationsView is a page of a student's applications plus a summary over all of them.
type StudentApplicationsView struct {
	Items      []ApplicationResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
	Summary    StatusCounts          `json:"summary"`
}

// NewOpportunitySummary converts an opportunity model into its display block.
func NewOpportunitySummary(opportunity models.Opportunity) OpportunitySummary {
	return OpportunitySummary{
		ID:              opportunity.ID,
		JobTitle:        opportunity.JobTitle,
		ExperienceLevel: opportunity.ExperienceLevel,
		Status:          string(opportunity.Status),
		Institution:     opportunity.Institution.Name,
	}
}

// NewApplicationResponse converts an application model. Associations must be preloaded.
func NewApplicationResponse(application models.Application) ApplicationResponse {
	history := make([]StatusHistoryEntry, 0, len(application.History))
	for _, entry := range application.History {
		history = append(history, StatusHistoryEntry{
			Status:    string(entry.Status),
			Timestamp: entry.ChangedAt,
			Note:      entry.Note,
		})
	}

	profile := application.ProfileSnapshot.Data()
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	return ApplicationResponse{
		ID:              application.ID,
		OpportunityID:   application.OpportunityID,
		StudentID:       application.StudentID,
		AlumniID:        application.AlumniID,
		Status:          string(application.Status),
		Opportunity:     NewOpportunitySummary(application.Opportunity),
		Alumni:          NewAlumniSummary(application.Alumni),
		ProfileSnapshot: profile,
		ResumeSnapshot:  application.ResumeSnapshot.Data(),
		AppliedAt:       application.AppliedAt,
		ShortlistedAt:   application.ShortlistedAt,
		ReferredAt:      application.ReferredAt,
		RejectedAt:      application.RejectedAt,
		StatusHistory:   history,
	}
}

// NewApplicationResponseSlice converts a slice of applications.
func NewApplicationResponseSlice(applications []models.Application) []ApplicationResponse {
	responses := make([]ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		responses = append(responses, NewApplicationResponse(application))
	}
	return responses
}
