package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/repository"
)

// IdentityDirectory resolves account ids into their role-specific records,
// institution affiliation and resume reference included.
type IdentityDirectory interface {
	ResolveStudent(ctx context.Context, id uint) (models.Student, error)
	ResolveAlumni(ctx context.Context, id uint) (models.Alumni, error)
}

// DirectoryService manages student and alumni profiles.
type DirectoryService interface {
	IdentityDirectory
	RegisterStudent(ctx context.Context, payload dto.StudentRegisterRequest) (dto.StudentResponse, error)
	RegisterAlumni(ctx context.Context, payload dto.AlumniRegisterRequest) (dto.AlumniResponse, error)
	GetStudentProfile(ctx context.Context, caller StudentCaller) (dto.StudentResponse, error)
	UpdateStudentProfile(ctx context.Context, caller StudentCaller, payload dto.StudentProfileUpdateRequest) (dto.StudentResponse, error)
	GetProfileStatus(ctx context.Context, caller StudentCaller) (dto.ProfileStatusResponse, error)
	GetAlumniProfile(ctx context.Context, caller AlumniCaller) (dto.AlumniResponse, error)
	UpdateAlumniProfile(ctx context.Context, caller AlumniCaller, payload dto.AlumniProfileUpdateRequest) (dto.AlumniResponse, error)
	StudentProfileForAlumni(ctx context.Context, caller AlumniCaller, studentID uint) (dto.StudentResponse, error)
}

type directoryService struct {
	students     repository.StudentRepository
	alumni       repository.AlumniRepository
	institutions InstitutionDirectory
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewDirectoryService constructs the directory.
func NewDirectoryService(students repository.StudentRepository, alumni repository.AlumniRepository, institutions InstitutionDirectory, validate *validator.Validate, logger zerolog.Logger) DirectoryService {
	return &directoryService{
		students:     students,
		alumni:       alumni,
		institutions: institutions,
		validator:    validate,
		logger:       logger.With().Str("component", "directory_service").Logger(),
	}
}

func (s *directoryService) ResolveStudent(ctx context.Context, id uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, fmt.Errorf("load student: %w", err)
	}
	return student, nil
}

func (s *directoryService) ResolveAlumni(ctx context.Context, id uint) (models.Alumni, error) {
	alumni, err := s.alumni.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Alumni{}, ErrAlumniNotFound
		}
		return models.Alumni{}, fmt.Errorf("load alumni: %w", err)
	}
	return alumni, nil
}

func (s *directoryService) RegisterStudent(ctx context.Context, payload dto.StudentRegisterRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	institution, err := s.institutions.GetOrCreate(ctx, payload.Institution)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		FirstName:      strings.TrimSpace(payload.FirstName),
		LastName:       strings.TrimSpace(payload.LastName),
		Email:          strings.ToLower(strings.TrimSpace(payload.Email)),
		InstitutionID:  &institution.ID,
		Institution:    &institution,
		Branch:         strings.TrimSpace(payload.Branch),
		GraduationYear: payload.GraduationYear,
		Skills:         normalizeSkills(payload.Skills),
	}
	student.ProfileCompleteness = profileCompleteness(student)

	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return dto.StudentResponse{}, ErrDuplicateAccount
		}
		return dto.StudentResponse{}, fmt.Errorf("create student: %w", err)
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("institution_id", institution.ID).Msg("student registered")
	return dto.NewStudentResponse(student), nil
}

func (s *directoryService) RegisterAlumni(ctx context.Context, payload dto.AlumniRegisterRequest) (dto.AlumniResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlumniResponse{}, err
	}

	institution, err := s.institutions.GetOrCreate(ctx, payload.Institution)
	if err != nil {
		return dto.AlumniResponse{}, err
	}

	alumni := models.Alumni{
		FirstName:           strings.TrimSpace(payload.FirstName),
		LastName:            strings.TrimSpace(payload.LastName),
		Email:               strings.ToLower(strings.TrimSpace(payload.Email)),
		InstitutionID:       institution.ID,
		Institution:         institution,
		Company:             strings.TrimSpace(payload.Company),
		JobTitle:            strings.TrimSpace(payload.JobTitle),
		YearsOfExperience:   payload.YearsOfExperience,
		Skills:              normalizeSkills(payload.Skills),
		ReferralPreferences: strings.TrimSpace(payload.ReferralPreferences),
	}

	if err := s.alumni.Create(ctx, &alumni); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return dto.AlumniResponse{}, ErrDuplicateAccount
		}
		return dto.AlumniResponse{}, fmt.Errorf("create alumni: %w", err)
	}

	s.logger.Info().Uint("alumni_id", alumni.ID).Uint("institution_id", institution.ID).Msg("alumni registered")
	return dto.NewAlumniResponse(alumni), nil
}

func (s *directoryService) GetStudentProfile(ctx context.Context, caller StudentCaller) (dto.StudentResponse, error) {
	student, err := s.ResolveStudent(ctx, caller.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

// UpdateStudentProfile edits the live profile. Only the submitted columns and the completeness
// score are written. Snapshots stored on existing applications are untouched.
func (s *directoryService) UpdateStudentProfile(ctx context.Context, caller StudentCaller, payload dto.StudentProfileUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	_, student, err := s.students.Mutate(ctx, caller.ID, func(student *models.Student) ([]string, error) {
		columns := make([]string, 0, 7)
		if payload.FirstName != nil {
			student.FirstName = strings.TrimSpace(*payload.FirstName)
			columns = append(columns, "first_name")
		}
		if payload.LastName != nil {
			student.LastName = strings.TrimSpace(*payload.LastName)
			columns = append(columns, "last_name")
		}
		if payload.Image != nil {
			student.Image = strings.TrimSpace(*payload.Image)
			columns = append(columns, "image")
		}
		if payload.Branch != nil {
			student.Branch = strings.TrimSpace(*payload.Branch)
			columns = append(columns, "branch")
		}
		if payload.GraduationYear != nil {
			student.GraduationYear = *payload.GraduationYear
			columns = append(columns, "graduation_year")
		}
		if payload.Skills != nil {
			student.Skills = normalizeSkills(payload.Skills)
			columns = append(columns, "skills")
		}
		if len(columns) == 0 {
			return nil, nil
		}
		student.ProfileCompleteness = profileCompleteness(*student)
		return append(columns, "profile_completeness"), nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, fmt.Errorf("update student: %w", err)
	}

	s.logger.Info().Uint("student_id", student.ID).Int("profile_completeness", student.ProfileCompleteness).Msg("student profile updated")
	return dto.NewStudentResponse(student), nil
}

// GetProfileStatus scores the live profile and lists what is still missing.
func (s *directoryService) GetProfileStatus(ctx context.Context, caller StudentCaller) (dto.ProfileStatusResponse, error) {
	student, err := s.ResolveStudent(ctx, caller.ID)
	if err != nil {
		return dto.ProfileStatusResponse{}, err
	}

	missing := make([]string, 0)
	for _, check := range profileChecks(student) {
		if !check.present {
			missing = append(missing, check.field)
		}
	}

	completeness := profileCompleteness(student)
	return dto.ProfileStatusResponse{
		Completeness:  completeness,
		Strength:      profileStrength(completeness),
		MissingFields: missing,
		Breakdown: dto.ProfileBreakdown{
			BasicInfo:   sectionStatus(student.FirstName != "" && student.LastName != "" && student.Email != ""),
			Institution: sectionStatus(student.InstitutionID != nil),
			Academic:    sectionStatus(student.Branch != "" && student.GraduationYear != 0),
			Skills:      sectionStatus(len(student.Skills) > 0),
			Resume:      sectionStatus(student.HasResume()),
		},
	}, nil
}

func (s *directoryService) GetAlumniProfile(ctx context.Context, caller AlumniCaller) (dto.AlumniResponse, error) {
	alumni, err := s.ResolveAlumni(ctx, caller.ID)
	if err != nil {
		return dto.AlumniResponse{}, err
	}
	return dto.NewAlumniResponse(alumni), nil
}

// UpdateAlumniProfile edits professional details. Institution and email are fixed at registration.
func (s *directoryService) UpdateAlumniProfile(ctx context.Context, caller AlumniCaller, payload dto.AlumniProfileUpdateRequest) (dto.AlumniResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AlumniResponse{}, err
	}

	alumni, err := s.alumni.Mutate(ctx, caller.ID, func(alumni *models.Alumni) ([]string, error) {
		var columns []string
		if payload.Company != nil {
			alumni.Company = strings.TrimSpace(*payload.Company)
			columns = append(columns, "company")
		}
		if payload.JobTitle != nil {
			alumni.JobTitle = strings.TrimSpace(*payload.JobTitle)
			columns = append(columns, "job_title")
		}
		if payload.YearsOfExperience != nil {
			alumni.YearsOfExperience = *payload.YearsOfExperience
			columns = append(columns, "years_of_experience")
		}
		if payload.Skills != nil {
			alumni.Skills = normalizeSkills(payload.Skills)
			columns = append(columns, "skills")
		}
		if payload.ReferralPreferences != nil {
			alumni.ReferralPreferences = strings.TrimSpace(*payload.ReferralPreferences)
			columns = append(columns, "referral_preferences")
		}
		return columns, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AlumniResponse{}, ErrAlumniNotFound
		}
		return dto.AlumniResponse{}, fmt.Errorf("update alumni: %w", err)
	}

	s.logger.Info().Uint("alumni_id", alumni.ID).Msg("alumni profile updated")
	return dto.NewAlumniResponse(alumni), nil
}

// StudentProfileForAlumni exposes a student's live profile to an alumnus of the same college.
func (s *directoryService) StudentProfileForAlumni(ctx context.Context, caller AlumniCaller, studentID uint) (dto.StudentResponse, error) {
	alumni, err := s.ResolveAlumni(ctx, caller.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.ResolveStudent(ctx, studentID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if student.InstitutionMatchKey() == "" || student.InstitutionMatchKey() != alumni.Institution.MatchKey {
		return dto.StudentResponse{}, ErrOutsideInstitution
	}

	return dto.NewStudentResponse(student), nil
}

type profileCheck struct {
	field   string
	present bool
	weight  int
}

func profileChecks(student models.Student) []profileCheck {
	return []profileCheck{
		{"first_name", student.FirstName != "", 10},
		{"last_name", student.LastName != "", 10},
		{"email", student.Email != "", 10},
		{"image", student.Image != "", 5},
		{"institution", student.InstitutionID != nil, 15},
		{"branch", student.Branch != "", 10},
		{"graduation_year", student.GraduationYear != 0, 10},
		{"skills", len(student.Skills) > 0, 10},
		{"resume", student.HasResume(), 20},
	}
}

// profileCompleteness scores the profile out of 100.
func profileCompleteness(student models.Student) int {
	score := 0
	for _, check := range profileChecks(student) {
		if check.present {
			score += check.weight
		}
	}
	return score
}

func profileStrength(completeness int) string {
	switch {
	case completeness >= 80:
		return "strong"
	case completeness >= 50:
		return "medium"
	default:
		return "weak"
	}
}

func sectionStatus(complete bool) string {
	if complete {
		return "complete"
	}
	return "incomplete"
}

func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
