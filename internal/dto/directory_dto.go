package dto

import (
	"time"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// StudentRegisterRequest creates a student profile linked to an institution.
type StudentRegisterRequest struct {
	FirstName      string   `json:"first_name" validate:"required,min=2,max=20"`
	LastName       string   `json:"last_name" validate:"required,min=2,max=20"`
	Email          string   `json:"email" validate:"required,email"`
	Institution    string   `json:"institution" validate:"required,min=2,max=100"`
	Branch         string   `json:"branch" validate:"omitempty,max=120"`
	GraduationYear int      `json:"graduation_year" validate:"omitempty,min=1950,max=2100"`
	Skills         []string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
}

// AlumniRegisterRequest creates an alumni profile linked to an institution.
type AlumniRegisterRequest struct {
	FirstName           string   `json:"first_name" validate:"required,min=2,max=20"`
	LastName            string   `json:"last_name" validate:"required,min=2,max=20"`
	Email               string   `json:"email" validate:"required,email"`
	Institution         string   `json:"institution" validate:"required,min=2,max=100"`
	Company             string   `json:"company" validate:"omitempty,max=120"`
	JobTitle            string   `json:"job_title" validate:"omitempty,max=120"`
	YearsOfExperience   int      `json:"years_of_experience" validate:"omitempty,min=0,max=80"`
	Skills              []string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
	ReferralPreferences string   `json:"referral_preferences" validate:"omitempty,max=2000"`
}

// StudentProfileUpdateRequest is a partial update of the live student profile.
type StudentProfileUpdateRequest struct {
	FirstName      *string  `json:"first_name" validate:"omitempty,min=2,max=20"`
	LastName       *string  `json:"last_name" validate:"omitempty,min=2,max=20"`
	Image          *string  `json:"image" validate:"omitempty,url"`
	Branch         *string  `json:"branch" validate:"omitempty,max=120"`
	GraduationYear *int     `json:"graduation_year" validate:"omitempty,min=1950,max=2100"`
	Skills         []string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
}

// AlumniProfileUpdateRequest is a partial update of an alumni profile.
type AlumniProfileUpdateRequest struct {
	Company             *string  `json:"company" validate:"omitempty,max=120"`
	JobTitle            *string  `json:"job_title" validate:"omitempty,max=120"`
	YearsOfExperience   *int     `json:"years_of_experience" validate:"omitempty,min=0,max=80"`
	Skills              []string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
	ReferralPreferences *string  `json:"referral_preferences" validate:"omitempty,max=2000"`
}

// ProfileBreakdown reports each profile section as complete or incomplete.
type ProfileBreakdown struct {
	BasicInfo   string `json:"basic_info"`
	Institution string `json:"institution"`
	Academic    string `json:"academic"`
	Skills      string `json:"skills"`
	Resume      string `json:"resume"`
}

// ProfileStatusResponse summarises how complete a student profile is.
type ProfileStatusResponse struct {
	Completeness  int              `json:"completeness"`
	Strength      string           `json:"strength"`
	MissingFields []string         `json:"missing_fields"`
	Breakdown     ProfileBreakdown `json:"breakdown"`
}

// InstitutionResponse serializes an institution.
type InstitutionResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	MatchKey string `json:"match_key"`
}

// ResumeResponse serializes a resume reference.
type ResumeResponse struct {
	URL        string     `json:"url"`
	PublicID   string     `json:"public_id"`
	UploadedAt *time.Time `json:"uploaded_at"`
}

// StudentResponse serializes a live student profile.
type StudentResponse struct {
	ID                  uint                 `json:"id"`
	FirstName           string               `json:"first_name"`
	LastName            string               `json:"last_name"`
	Email               string               `json:"email"`
	Image               string               `json:"image"`
	Institution         *InstitutionResponse `json:"institution"`
	Branch              string               `json:"branch"`
	GraduationYear      int                  `json:"graduation_year"`
	Skills              []string             `json:"skills"`
	ProfileCompleteness int                  `json:"profile_completeness"`
	Resume              *ResumeResponse      `json:"resume"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// AlumniResponse serializes an alumni profile.
type AlumniResponse struct {
	ID                  uint                `json:"id"`
	FirstName           string              `json:"first_name"`
	LastName            string              `json:"last_name"`
	Email               string              `json:"email"`
	Institution         InstitutionResponse `json:"institution"`
	Company             string              `json:"company"`
	JobTitle            string              `json:"job_title"`
	YearsOfExperience   int                 `json:"years_of_experience"`
	Skills              []string            `json:"skills"`
	ReferralPreferences string              `json:"referral_preferences"`
	CreatedAt           time.Time           `json:"created_at"`
}

// NewInstitutionResponse converts an institution model.
func NewInstitutionResponse(institution models.Institution) InstitutionResponse {
	return InstitutionResponse{
		ID:       institution.ID,
		Name:     institution.Name,
		MatchKey: institution.MatchKey,
	}
}

// NewStudentResponse converts a student model.
func NewStudentResponse(student models.Student) StudentResponse {
	response := StudentResponse{
		ID:                  student.ID,
		FirstName:           student.FirstName,
		LastName:            student.LastName,
		Email:               student.Email,
		Image:               student.Image,
		Branch:              student.Branch,
		GraduationYear:      student.GraduationYear,
		Skills:              stringsOrEmpty(student.Skills),
		ProfileCompleteness: student.ProfileCompleteness,
		CreatedAt:           student.CreatedAt,
		UpdatedAt:           student.UpdatedAt,
	}

	if student.Institution != nil {
		institution := NewInstitutionResponse(*student.Institution)
		response.Institution = &institution
	}

	if student.HasResume() {
		response.Resume = &ResumeResponse{
			URL:        student.ResumeURL,
			PublicID:   student.ResumePublicID,
			UploadedAt: student.ResumeUploadedAt,
		}
	}

	return response
}

// NewAlumniResponse converts an alumni model.
func NewAlumniResponse(alumni models.Alumni) AlumniResponse {
	return AlumniResponse{
		ID:                  alumni.ID,
		FirstName:           alumni.FirstName,
		LastName:            alumni.LastName,
		Email:               alumni.Email,
		Institution:         NewInstitutionResponse(alumni.Institution),
		Company:             alumni.Company,
		JobTitle:            alumni.JobTitle,
		YearsOfExperience:   alumni.YearsOfExperience,
		Skills:              stringsOrEmpty(alumni.Skills),
		ReferralPreferences: alumni.ReferralPreferences,
		CreatedAt:           alumni.CreatedAt,
	}
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
