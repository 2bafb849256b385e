package dto

import (
	"time"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// OpportunityCreateRequest describes a new referral posting.
type OpportunityCreateRequest struct {
	JobTitle        string   `json:"job_title" validate:"required,max=255"`
	Description     string   `json:"description" validate:"required,max=10000"`
	RequiredSkills  []string `json:"required_skills" validate:"omitempty,max=50,dive,max=50"`
	ExperienceLevel string   `json:"experience_level" validate:"required,max=64"`
	ReferralTarget  int      `json:"referral_target" validate:"min=1"`
}

// OpportunityUpdateRequest is a partial update; nil fields are left untouched.
type OpportunityUpdateRequest struct {
	JobTitle        *string  `json:"job_title" validate:"omitempty,min=1,max=255"`
	Description     *string  `json:"description" validate:"omitempty,min=1,max=10000"`
	RequiredSkills  []string `json:"required_skills" validate:"omitempty,max=50,dive,max=50"`
	ExperienceLevel *string  `json:"experience_level" validate:"omitempty,min=1,max=64"`
	ReferralTarget  *int     `json:"referral_target" validate:"omitempty,min=1"`
}

// AlumniSummary is the owner display block embedded in opportunity and application payloads.
type AlumniSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	JobTitle string `json:"job_title"`
}

// OpportunityResponse serializes a referral posting.
type OpportunityResponse struct {
	ID              uint                `json:"id"`
	JobTitle        string              `json:"job_title"`
	Description     string              `json:"description"`
	RequiredSkills  []string            `json:"required_skills"`
	ExperienceLevel string              `json:"experience_level"`
	ReferralTarget  int                 `json:"referral_target"`
	Status          string              `json:"status"`
	PostedBy        AlumniSummary       `json:"posted_by"`
	Institution     InstitutionResponse `json:"institution"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewAlumniSummary converts an alumni model into its display block.
func NewAlumniSummary(alumni models.Alumni) AlumniSummary {
	return AlumniSummary{
		ID:       alumni.ID,
		Name:     alumni.FullName(),
		Email:    alumni.Email,
		Company:  alumni.Company,
		JobTitle: alumni.JobTitle,
	}
}

// NewOpportunityResponse converts an opportunity model.
func NewOpportunityResponse(opportunity models.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:              opportunity.ID,
		JobTitle:        opportunity.JobTitle,
		Description:     opportunity.Description,
		RequiredSkills:  stringsOrEmpty(opportunity.RequiredSkills),
		ExperienceLevel: opportunity.ExperienceLevel,
		ReferralTarget:  opportunity.ReferralTarget,
		Status:          string(opportunity.Status),
		PostedBy:        NewAlumniSummary(opportunity.Alumni),
		Institution:     NewInstitutionResponse(opportunity.Institution),
		CreatedAt:       opportunity.CreatedAt,
		UpdatedAt:       opportunity.UpdatedAt,
	}
}

// NewOpportunityResponseSlice converts a slice of opportunities.
func NewOpportunityResponseSlice(opportunities []models.Opportunity) []OpportunityResponse {
	responses := make([]OpportunityResponse, 0, len(opportunities))
	for _, opportunity := range opportunities {
		responses = append(responses, NewOpportunityResponse(opportunity))
	}
	return responses
}
