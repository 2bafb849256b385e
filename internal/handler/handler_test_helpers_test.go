package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/config"
	"github.com/noah-isme/referral-go-api/internal/database"
	"github.com/noah-isme/referral-go-api/internal/handler"
	"github.com/noah-isme/referral-go-api/internal/middleware"
	"github.com/noah-isme/referral-go-api/internal/repository"
	"github.com/noah-isme/referral-go-api/internal/router"
	"github.com/noah-isme/referral-go-api/internal/service"
)

const testSecret = "handler-test-secret"

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
}

type caller struct {
	id   uint
	role string
}

func asStudent(id uint) *caller { return &caller{id: id, role: "student"} }

func asAlumni(id uint) *caller { return &caller{id: id, role: "alumni"} }

type fileStore struct {
	mu    sync.Mutex
	count int
}

func (f *fileStore) Upload(ctx context.Context, name string, reader io.Reader) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", "", err
	}
	f.count++
	publicID := fmt.Sprintf("resumes/%d-%s", f.count, name)
	return "https://files.test/" + publicID, publicID, nil
}

func (f *fileStore) Delete(context.Context, string) error {
	return nil
}

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	institutions := service.NewInstitutionService(repository.NewInstitutionRepository(db), logger)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	directory := service.NewDirectoryService(studentRepo, repository.NewAlumniRepository(db), institutions, validate, logger)
	opportunities := service.NewOpportunityService(repository.NewOpportunityRepository(db), directory, activity, validate, logger)
	eligibility := service.NewEligibilityService(directory, opportunities, logger)
	applicationRepo := repository.NewApplicationRepository(db)
	applications := service.NewApplicationService(applicationRepo, eligibility, opportunities, activity, nil, validate, logger)
	views := service.NewApplicationViewService(applications, service.PageDefaults{Size: 10, Max: 50})
	resumes := service.NewResumeService(&fileStore{}, studentRepo, applicationRepo, directory, activity, 1, logger)

	cfg := config.Config{AppName: "Referral API", AppEnv: "test"}
	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DirectoryHandler:   handler.NewDirectoryHandler(directory, resumes, logger),
		OpportunityHandler: handler.NewOpportunityHandler(opportunities, eligibility, logger),
		ApplicationHandler: handler.NewApplicationHandler(applications, views, logger),
		ActivityHandler:    handler.NewActivityHandler(activity, logger),
		JWTMiddleware:      middleware.JWTProtected(testSecret),
	})

	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, req *http.Request, as *caller) (int, envelope) {
	t.Helper()
	if as != nil {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": fmt.Sprint(as.id), "role": as.role})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+signed)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func (s *testServer) doJSON(t *testing.T, method, path string, body interface{}, as *caller) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(t, req, as)
}

func (s *testServer) uploadResume(t *testing.T, as *caller, filename string, content []byte) (int, envelope) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/me/resume", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return s.do(t, req, as)
}

func decodeData(t *testing.T, payload envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}

func (s *testServer) registerStudent(t *testing.T, email, institution string) uint {
	t.Helper()
	status, payload := s.doJSON(t, http.MethodPost, "/api/v1/students", map[string]interface{}{
		"first_name":      "Stu",
		"last_name":       "Dent",
		"email":           email,
		"institution":     institution,
		"branch":          "Computer Science",
		"graduation_year": 2027,
		"skills":          []string{"go", "sql"},
	}, nil)
	require.Equal(t, http.StatusCreated, status, payload.Message)

	var student struct {
		ID uint `json:"id"`
	}
	decodeData(t, payload, &student)
	return student.ID
}

func (s *testServer) registerAlumni(t *testing.T, email, institution string) uint {
	t.Helper()
	status, payload := s.doJSON(t, http.MethodPost, "/api/v1/alumni", map[string]interface{}{
		"first_name":  "Al",
		"last_name":   "Umni",
		"email":       email,
		"institution": institution,
		"company":     "Acme",
		"job_title":   "Staff Engineer",
	}, nil)
	require.Equal(t, http.StatusCreated, status, payload.Message)

	var alumni struct {
		ID uint `json:"id"`
	}
	decodeData(t, payload, &alumni)
	return alumni.ID
}

func (s *testServer) postOpportunity(t *testing.T, alumniID uint, title string) uint {
	t.Helper()
	status, payload := s.doJSON(t, http.MethodPost, "/api/v1/alumni/opportunities", map[string]interface{}{
		"job_title":        title,
		"description":      "Build referral services in Go",
		"required_skills":  []string{"go"},
		"experience_level": "entry",
		"referral_target":  2,
	}, asAlumni(alumniID))
	require.Equal(t, http.StatusCreated, status, payload.Message)

	var opportunity struct {
		ID uint `json:"id"`
	}
	decodeData(t, payload, &opportunity)
	return opportunity.ID
}

func (s *testServer) readyStudent(t *testing.T, email, institution string) uint {
	t.Helper()
	id := s.registerStudent(t, email, institution)
	status, payload := s.uploadResume(t, asStudent(id), "cv.pdf", samplePDF)
	require.Equal(t, http.StatusOK, status, payload.Message)
	return id
}
