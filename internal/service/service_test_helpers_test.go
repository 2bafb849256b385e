package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Institution{},
		&models.Student{},
		&models.Alumni{},
		&models.Opportunity{},
		&models.Application{},
		&models.ApplicationStatusHistory{},
		&models.ActivityLog{},
	))
	return db
}

type memoryStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
	deleted []string
	failing bool
	// afterUpload runs once the asset is stored, before the profile is updated.
	afterUpload func()
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{uploads: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", "", fmt.Errorf("storage unavailable")
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", "", err
	}
	publicID := fmt.Sprintf("resumes/%d-%s", len(m.uploads)+len(m.deleted)+1, name)
	m.uploads[publicID] = payload
	if m.afterUpload != nil {
		hook := m.afterUpload
		m.afterUpload = nil
		m.mu.Unlock()
		hook()
		m.mu.Lock()
	}
	return "https://files.test/" + publicID, publicID, nil
}

func (m *memoryStorage) Delete(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, publicID)
	m.deleted = append(m.deleted, publicID)
	return nil
}

// testEnv wires every service against one sqlite database.
type testEnv struct {
	db            *gorm.DB
	activityRepo  repository.ActivityLogRepository
	storage       *memoryStorage
	institutions  InstitutionDirectory
	directory     DirectoryService
	activity      ActivityService
	opportunities OpportunityService
	eligibility   EligibilityService
	applications  ApplicationService
	views         ApplicationViewService
	resumes       ResumeService
	clock         *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestEnv(t *testing.T, cache *SummaryCache) *testEnv {
	t.Helper()
	db := setupServiceDB(t)
	logger := testLogger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	students := repository.NewStudentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	institutions := NewInstitutionService(repository.NewInstitutionRepository(db), logger)
	directory := NewDirectoryService(students, repository.NewAlumniRepository(db), institutions, validate, logger)
	activity := NewActivityService(activityRepo, logger)

	opportunities := NewOpportunityService(repository.NewOpportunityRepository(db), directory, activity, validate, logger)
	opportunities.(*opportunityService).now = clock.Now

	eligibility := NewEligibilityService(directory, opportunities, logger)

	applicationRepo := repository.NewApplicationRepository(db)
	applications := NewApplicationService(applicationRepo, eligibility, opportunities, activity, cache, validate, logger)
	applications.(*applicationService).now = clock.Now

	storage := newMemoryStorage()
	resumes := NewResumeService(storage, students, applicationRepo, directory, activity, 1, logger)
	resumes.(*resumeService).now = clock.Now

	return &testEnv{
		db:            db,
		activityRepo:  activityRepo,
		storage:       storage,
		institutions:  institutions,
		directory:     directory,
		activity:      activity,
		opportunities: opportunities,
		eligibility:   eligibility,
		applications:  applications,
		views:         NewApplicationViewService(applications, PageDefaults{Size: 10, Max: 50}),
		resumes:       resumes,
		clock:         clock,
	}
}

// seedStudent registers a student and, when resume is true, puts a resume reference on file.
func (e *testEnv) seedStudent(t *testing.T, email, institution string, resume bool) models.Student {
	t.Helper()
	ctx := context.Background()

	institutionModel, err := e.institutions.GetOrCreate(ctx, institution)
	require.NoError(t, err)

	student := models.Student{
		FirstName:      "Stu",
		LastName:       "Dent",
		Email:          email,
		InstitutionID:  &institutionModel.ID,
		Branch:         "Computer Science",
		GraduationYear: 2027,
		Skills:         []string{"go", "sql"},
	}
	if resume {
		uploadedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		student.ResumeURL = "https://files.test/" + email + ".pdf"
		student.ResumePublicID = "resumes/" + email
		student.ResumeUploadedAt = &uploadedAt
	}
	student.ProfileCompleteness = profileCompleteness(student)
	require.NoError(t, e.db.Omit("Institution").Create(&student).Error)

	resolved, err := e.directory.ResolveStudent(ctx, student.ID)
	require.NoError(t, err)
	return resolved
}

func (e *testEnv) seedAlumni(t *testing.T, email, institution string) models.Alumni {
	t.Helper()
	ctx := context.Background()

	institutionModel, err := e.institutions.GetOrCreate(ctx, institution)
	require.NoError(t, err)

	alumni := models.Alumni{
		FirstName:     "Al",
		LastName:      "Umni",
		Email:         email,
		InstitutionID: institutionModel.ID,
		Company:       "Acme",
		JobTitle:      "Staff Engineer",
	}
	require.NoError(t, e.db.Omit("Institution").Create(&alumni).Error)

	resolved, err := e.directory.ResolveAlumni(ctx, alumni.ID)
	require.NoError(t, err)
	return resolved
}

func (e *testEnv) seedOpportunity(t *testing.T, owner models.Alumni) models.Opportunity {
	t.Helper()

	response, err := e.opportunities.Create(context.Background(), AlumniCaller{ID: owner.ID}, dtoOpportunity("Backend Engineer"))
	require.NoError(t, err)

	opportunity, err := e.opportunities.Lookup(context.Background(), response.ID)
	require.NoError(t, err)
	return opportunity
}

func (e *testEnv) historyCount(t *testing.T, applicationID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.ApplicationStatusHistory{}).Where("application_id = ?", applicationID).Count(&count).Error)
	return count
}
