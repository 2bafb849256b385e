package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/referral-go-api/internal/models"
)

func TestEligibilityAllowsSameCollegeWithResume(t *testing.T) {
	env := newTestEnv(t, nil)
	alumni := env.seedAlumni(t, "a1@example.com", "mit")
	student := env.seedStudent(t, "s1@example.com", "MIT", true)
	opportunity := env.seedOpportunity(t, alumni)

	result, err := env.eligibility.Evaluate(context.Background(), student.ID, opportunity.ID)
	require.NoError(t, err)
	require.True(t, result.Allowed())
	require.Equal(t, opportunity.ID, result.Opportunity.ID)

	response, err := env.eligibility.Check(context.Background(), StudentCaller{ID: student.ID}, opportunity.ID)
	require.NoError(t, err)
	require.True(t, response.Eligible)
	require.Empty(t, response.Reason)
}

func TestEligibilityReasonsAreDistinct(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alumni := env.seedAlumni(t, "a1@example.com", "MIT")
	opportunity := env.seedOpportunity(t, alumni)

	withResume := env.seedStudent(t, "s1@example.com", "M I T", true)
	withoutResume := env.seedStudent(t, "s2@example.com", "mit", false)
	otherCollege := env.seedStudent(t, "s3@example.com", "Stanford", true)

	check := func(studentID uint) string {
		response, err := env.eligibility.Check(ctx, StudentCaller{ID: studentID}, opportunity.ID)
		require.NoError(t, err)
		return response.Reason
	}

	require.Empty(t, check(withResume.ID))
	require.Equal(t, "resume-required", check(withoutResume.ID))
	require.Equal(t, "institution-mismatch", check(otherCollege.ID))

	_, err := env.opportunities.Close(ctx, AlumniCaller{ID: alumni.ID}, opportunity.ID)
	require.NoError(t, err)

	require.Equal(t, "closed", check(withResume.ID))
	require.Equal(t, "closed", check(withoutResume.ID))
	require.Equal(t, "closed", check(otherCollege.ID))
}

func TestEligibilityMissingParties(t *testing.T) {
	env := newTestEnv(t, nil)
	alumni := env.seedAlumni(t, "a1@example.com", "MIT")
	opportunity := env.seedOpportunity(t, alumni)
	student := env.seedStudent(t, "s1@example.com", "MIT", true)

	_, err := env.eligibility.Evaluate(context.Background(), 999, opportunity.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)

	_, err = env.eligibility.Evaluate(context.Background(), student.ID, 999)
	require.ErrorIs(t, err, ErrOpportunityNotFound)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestMatchEligibilityOrder(t *testing.T) {
	mit := &models.Institution{MatchKey: "mit"}
	cases := []struct {
		name        string
		student     models.Student
		opportunity models.Opportunity
		want        *Error
	}{
		{
			name:        "closed wins over everything",
			student:     models.Student{},
			opportunity: models.Opportunity{Status: models.OpportunityStatusClosed, Institution: models.Institution{MatchKey: "stanford"}},
			want:        ErrIneligibleClosed,
		},
		{
			name:        "resume before college",
			student:     models.Student{Institution: &models.Institution{MatchKey: "stanford"}},
			opportunity: models.Opportunity{Status: models.OpportunityStatusOpen, Institution: *mit},
			want:        ErrIneligibleResumeRequired,
		},
		{
			name:        "unaffiliated student",
			student:     models.Student{ResumeURL: "https://files.test/r.pdf"},
			opportunity: models.Opportunity{Status: models.OpportunityStatusOpen, Institution: *mit},
			want:        ErrIneligibleInstitution,
		},
		{
			name:        "eligible",
			student:     models.Student{ResumeURL: "https://files.test/r.pdf", Institution: mit},
			opportunity: models.Opportunity{Status: models.OpportunityStatusOpen, Institution: *mit},
			want:        nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, matchEligibility(tc.student, tc.opportunity))
		})
	}
}
