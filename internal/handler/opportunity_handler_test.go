package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEligibilityEndpointReportsReason(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.registerAlumni(t, "owner@example.com", "MIT")
	opportunityID := srv.postOpportunity(t, owner, "Backend Engineer")
	student := srv.registerStudent(t, "stu@example.com", "MIT")
	path := fmt.Sprintf("/api/v1/opportunities/%d/eligibility", opportunityID)

	status, payload := srv.doJSON(t, http.MethodGet, path, nil, asStudent(student))
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Eligible bool   `json:"eligible"`
		Reason   string `json:"reason"`
	}
	decodeData(t, payload, &result)
	require.False(t, result.Eligible)
	require.Equal(t, "resume-required", result.Reason)

	status, _ = srv.uploadResume(t, asStudent(student), "cv.pdf", samplePDF)
	require.Equal(t, http.StatusOK, status)

	status, payload = srv.doJSON(t, http.MethodGet, path, nil, asStudent(student))
	require.Equal(t, http.StatusOK, status)
	result.Reason = ""
	decodeData(t, payload, &result)
	require.True(t, result.Eligible)
	require.Empty(t, result.Reason)
}

func TestOpportunityManagement(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.registerAlumni(t, "owner@example.com", "MIT")
	colleague := srv.registerAlumni(t, "colleague@example.com", "MIT")
	opportunityID := srv.postOpportunity(t, owner, "Backend Engineer")
	itemPath := fmt.Sprintf("/api/v1/alumni/opportunities/%d", opportunityID)

	status, payload := srv.doJSON(t, http.MethodPost, "/api/v1/alumni/opportunities", map[string]interface{}{
		"job_title":        "Zero Referrals",
		"description":      "desc",
		"experience_level": "entry",
		"referral_target":  0,
	}, asAlumni(owner))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "referral-target", payload.Reason)

	status, payload = srv.doJSON(t, http.MethodPatch, itemPath, map[string]interface{}{"job_title": "Hijacked"}, asAlumni(colleague))
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "not-owner", payload.Reason)

	status, payload = srv.doJSON(t, http.MethodPatch, itemPath, map[string]interface{}{"job_title": "Senior Backend Engineer"}, asAlumni(owner))
	require.Equal(t, http.StatusOK, status)
	var updated struct {
		JobTitle string `json:"job_title"`
		Status   string `json:"status"`
	}
	decodeData(t, payload, &updated)
	require.Equal(t, "Senior Backend Engineer", updated.JobTitle)
	require.Equal(t, "open", updated.Status)

	status, payload = srv.doJSON(t, http.MethodGet, "/api/v1/alumni/opportunities", nil, asAlumni(owner))
	require.Equal(t, http.StatusOK, status)
	var mine []struct {
		ID uint `json:"id"`
	}
	decodeData(t, payload, &mine)
	require.Len(t, mine, 1)

	for i := 0; i < 2; i++ {
		status, payload = srv.doJSON(t, http.MethodDelete, itemPath, nil, asAlumni(owner))
		require.Equal(t, http.StatusOK, status)
		decodeData(t, payload, &updated)
		require.Equal(t, "closed", updated.Status)
	}
}

func TestStudentListingShowsOpenOpportunitiesOfOwnCollege(t *testing.T) {
	srv := newTestServer(t)
	mitAlumni := srv.registerAlumni(t, "mit@example.com", "MIT")
	stanfordAlumni := srv.registerAlumni(t, "stanford@example.com", "Stanford")
	open := srv.postOpportunity(t, mitAlumni, "Backend Engineer")
	closed := srv.postOpportunity(t, mitAlumni, "Data Engineer")
	srv.postOpportunity(t, stanfordAlumni, "Frontend Engineer")

	status, _ := srv.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/alumni/opportunities/%d", closed), nil, asAlumni(mitAlumni))
	require.Equal(t, http.StatusOK, status)

	student := srv.registerStudent(t, "stu@example.com", "mit")
	status, payload := srv.doJSON(t, http.MethodGet, "/api/v1/opportunities", nil, asStudent(student))
	require.Equal(t, http.StatusOK, status)

	var items []struct {
		ID uint `json:"id"`
	}
	decodeData(t, payload, &items)
	require.Len(t, items, 1)
	require.Equal(t, open, items[0].ID)

	status, _ = srv.doJSON(t, http.MethodGet, "/api/v1/opportunities", nil, asAlumni(mitAlumni))
	require.Equal(t, http.StatusForbidden, status)
}
