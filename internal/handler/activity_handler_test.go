package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivityListsOwnTrail(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.registerAlumni(t, "owner@example.com", "MIT")
	other := srv.registerAlumni(t, "other@example.com", "MIT")
	srv.postOpportunity(t, owner, "Backend Engineer")

	status, payload := srv.doJSON(t, http.MethodGet, "/api/v1/alumni/activity", nil, asAlumni(owner))
	require.Equal(t, http.StatusOK, status)
	var entries []struct {
		Action string `json:"action"`
	}
	decodeData(t, payload, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, "opportunity.created", entries[0].Action)

	status, payload = srv.doJSON(t, http.MethodGet, "/api/v1/alumni/activity", nil, asAlumni(other))
	require.Equal(t, http.StatusOK, status)
	entries = nil
	decodeData(t, payload, &entries)
	require.Empty(t, entries)
}
