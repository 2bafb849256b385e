package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
)

func TestRegisterStudentAndAlumniShareInstitution(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	student, err := env.directory.RegisterStudent(ctx, dto.StudentRegisterRequest{
		FirstName:   "Sam",
		LastName:    "Student",
		Email:       "Sam@Example.com",
		Institution: "Massachusetts  Institute of Technology",
		Skills:      []string{"go", "Go", "sql", "  "},
	})
	require.NoError(t, err)
	require.Equal(t, "sam@example.com", student.Email)
	require.Equal(t, []string{"go", "sql"}, student.Skills)
	require.NotNil(t, student.Institution)
	require.Equal(t, "massachusettsinstituteoftechnology", student.Institution.MatchKey)
	require.Nil(t, student.Resume)

	alumni, err := env.directory.RegisterAlumni(ctx, dto.AlumniRegisterRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Institution: "massachusetts institute of technology",
		Company:     "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, student.Institution.ID, alumni.Institution.ID)
	require.Equal(t, "Massachusetts Institute of Technology", alumni.Institution.Name)

	var count int64
	require.NoError(t, env.db.Model(&models.Institution{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterStudentRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	payload := dto.StudentRegisterRequest{FirstName: "Sam", LastName: "Student", Email: "sam@example.com", Institution: "MIT"}

	_, err := env.directory.RegisterStudent(ctx, payload)
	require.NoError(t, err)

	_, err = env.directory.RegisterStudent(ctx, payload)
	require.ErrorIs(t, err, ErrDuplicateAccount)
	require.Equal(t, KindDuplicate, KindOf(err))
}

func TestRegisterStudentValidatesPayload(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.directory.RegisterStudent(context.Background(), dto.StudentRegisterRequest{FirstName: "S", Email: "not-an-email"})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = env.directory.RegisterStudent(context.Background(), dto.StudentRegisterRequest{FirstName: "Sam", LastName: "Student", Email: "sam@example.com", Institution: "    "})
	require.ErrorIs(t, err, ErrInvalidInstitution)
}

func TestUpdateStudentProfileRecomputesCompleteness(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	student := env.seedStudent(t, "s1@example.com", "MIT", false)
	caller := StudentCaller{ID: student.ID}

	before, err := env.directory.GetStudentProfile(ctx, caller)
	require.NoError(t, err)
	require.Equal(t, 75, before.ProfileCompleteness)

	image := "https://cdn.test/avatar.png"
	after, err := env.directory.UpdateStudentProfile(ctx, caller, dto.StudentProfileUpdateRequest{Image: &image})
	require.NoError(t, err)
	require.Equal(t, 80, after.ProfileCompleteness)

	_, err = env.directory.UpdateStudentProfile(context.Background(), StudentCaller{ID: 999}, dto.StudentProfileUpdateRequest{Image: &image})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentProfileForAlumniRequiresSameCollege(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	mit := env.seedAlumni(t, "a1@example.com", "MIT")
	stanford := env.seedAlumni(t, "a2@example.com", "Stanford")
	student := env.seedStudent(t, "s1@example.com", "mit", true)

	profile, err := env.directory.StudentProfileForAlumni(ctx, AlumniCaller{ID: mit.ID}, student.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, profile.ID)
	require.NotNil(t, profile.Resume)

	_, err = env.directory.StudentProfileForAlumni(ctx, AlumniCaller{ID: stanford.ID}, student.ID)
	require.ErrorIs(t, err, ErrOutsideInstitution)
}

func TestProfileCompletenessWeights(t *testing.T) {
	institutionID := uint(1)
	require.Equal(t, 0, profileCompleteness(models.Student{}))
	require.Equal(t, 100, profileCompleteness(models.Student{
		FirstName:      "A",
		LastName:       "B",
		Email:          "a@b.c",
		Image:          "img",
		InstitutionID:  &institutionID,
		Branch:         "CS",
		GraduationYear: 2026,
		Skills:         []string{"go"},
		ResumeURL:      "https://files.test/r.pdf",
	}))
}

func TestProfileStatusListsMissingSections(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	student := env.seedStudent(t, "s1@example.com", "MIT", false)

	status, err := env.directory.GetProfileStatus(ctx, StudentCaller{ID: student.ID})
	require.NoError(t, err)
	require.Equal(t, 75, status.Completeness)
	require.Equal(t, "medium", status.Strength)
	require.Equal(t, []string{"image", "resume"}, status.MissingFields)
	require.Equal(t, "complete", status.Breakdown.Academic)
	require.Equal(t, "incomplete", status.Breakdown.Resume)

	withResume := env.seedStudent(t, "s2@example.com", "MIT", true)
	status, err = env.directory.GetProfileStatus(ctx, StudentCaller{ID: withResume.ID})
	require.NoError(t, err)
	require.Equal(t, "strong", status.Strength)
	require.Equal(t, []string{"image"}, status.MissingFields)

	_, err = env.directory.GetProfileStatus(ctx, StudentCaller{ID: 999})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestUpdateAlumniProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alumni := env.seedAlumni(t, "a1@example.com", "MIT")
	caller := AlumniCaller{ID: alumni.ID}

	company := "  Globex "
	years := 7
	preferences := "Backend roles only"
	updated, err := env.directory.UpdateAlumniProfile(ctx, caller, dto.AlumniProfileUpdateRequest{
		Company:             &company,
		YearsOfExperience:   &years,
		Skills:              []string{"Go", "go", "k8s", " "},
		ReferralPreferences: &preferences,
	})
	require.NoError(t, err)
	require.Equal(t, "Globex", updated.Company)
	require.Equal(t, "Staff Engineer", updated.JobTitle)
	require.Equal(t, 7, updated.YearsOfExperience)
	require.Equal(t, []string{"Go", "k8s"}, updated.Skills)

	profile, err := env.directory.GetAlumniProfile(ctx, caller)
	require.NoError(t, err)
	require.Equal(t, "Globex", profile.Company)
	require.Equal(t, preferences, profile.ReferralPreferences)
	require.Equal(t, "mit", profile.Institution.MatchKey)

	negative := -1
	_, err = env.directory.UpdateAlumniProfile(ctx, caller, dto.AlumniProfileUpdateRequest{YearsOfExperience: &negative})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = env.directory.UpdateAlumniProfile(ctx, AlumniCaller{ID: 999}, dto.AlumniProfileUpdateRequest{Company: &company})
	require.ErrorIs(t, err, ErrAlumniNotFound)

	_, err = env.directory.GetAlumniProfile(ctx, AlumniCaller{ID: 999})
	require.ErrorIs(t, err, ErrAlumniNotFound)
}
