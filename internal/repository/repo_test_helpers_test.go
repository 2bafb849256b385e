package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
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

type fixture struct {
	institution models.Institution
	alumni      models.Alumni
	student     models.Student
	opportunity models.Opportunity
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	institution := models.Institution{Name: "MIT", MatchKey: "mit"}
	require.NoError(t, db.Create(&institution).Error)

	alumni := models.Alumni{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", InstitutionID: institution.ID}
	require.NoError(t, db.Omit("Institution").Create(&alumni).Error)

	student := models.Student{FirstName: "Sam", LastName: "Student", Email: "sam@example.com", InstitutionID: &institution.ID, ResumeURL: "https://files.test/sam.pdf"}
	require.NoError(t, db.Omit("Institution").Create(&student).Error)

	opportunity := models.Opportunity{
		JobTitle:        "Backend Engineer",
		Description:     "Go services",
		ExperienceLevel: "entry",
		ReferralTarget:  2,
		AlumniID:        alumni.ID,
		InstitutionID:   institution.ID,
		Status:          models.OpportunityStatusOpen,
	}
	require.NoError(t, db.Omit("Alumni", "Institution").Create(&opportunity).Error)

	return fixture{institution: institution, alumni: alumni, student: student, opportunity: opportunity}
}

func newApplication(f fixture, studentID uint, appliedAt time.Time) models.Application {
	return models.Application{
		OpportunityID: f.opportunity.ID,
		StudentID:     studentID,
		AlumniID:      f.alumni.ID,
		Status:        models.ApplicationStatusApplied,
		AppliedAt:     appliedAt,
		History: []models.ApplicationStatusHistory{
			{Status: models.ApplicationStatusApplied, ChangedAt: appliedAt},
		},
	}
}
