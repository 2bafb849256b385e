package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesDomainCounters(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", MetricsHandler(""))

	ApplicationsCreated().Inc()
	ApplicationTransitions().WithLabelValues("shortlisted").Inc()
	EligibilityDenials().WithLabelValues("resume-required").Inc()

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "applications_created_total")
	require.Contains(t, string(body), `application_transitions_total{status="shortlisted"}`)
	require.Contains(t, string(body), `eligibility_denials_total{reason="resume-required"}`)
}

func TestMetricsHandlerRequiresConfiguredToken(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", MetricsHandler("scrape-secret"))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.Header.Set("Authorization", "Bearer scrape-secret")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
