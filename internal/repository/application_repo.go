package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// ApplicationFilter allows narrowing application queries.
type ApplicationFilter struct {
	OpportunityID *uint
	StudentID     *uint
	AlumniID      *uint
	Status        *models.ApplicationStatus
	Page          int
	PageSize      int
}

// ApplicationTransition describes a guarded status change.
// The update only applies while the stored status still equals From.
type ApplicationTransition struct {
	From          models.ApplicationStatus
	To            models.ApplicationStatus
	ShortlistedAt *time.Time
	ReferredAt    *time.Time
	RejectedAt    *time.Time
	Entry         models.ApplicationStatusHistory
}

// StatusCount is the number of applications sharing a status.
type StatusCount struct {
	Status models.ApplicationStatus
	Total  int64
}

// ApplicationRepository defines data operations for applications and their status trail.
type ApplicationRepository interface {
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error)
	GetByID(ctx context.Context, id uint) (models.Application, error)
	GetByOpportunityAndStudent(ctx context.Context, opportunityID, studentID uint) (models.Application, error)
	CountByStatus(ctx context.Context, filter ApplicationFilter) ([]StatusCount, error)
	Create(ctx context.Context, application *models.Application) error
	Transition(ctx context.Context, id uint, change ApplicationTransition) error
	CountByResume(ctx context.Context, publicID string) (int64, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository instantiates the repository.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Preload("Opportunity").
		Preload("Opportunity.Institution").
		Preload("Alumni").
		Preload("Student").
		Preload("History", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("changed_at ASC").Order("id ASC")
		})
}

func applyApplicationFilter(query *gorm.DB, filter ApplicationFilter) *gorm.DB {
	if filter.OpportunityID != nil {
		query = query.Where("opportunity_id = ?", *filter.OpportunityID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.AlumniID != nil {
		query = query.Where("alumni_id = ?", *filter.AlumniID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	return query
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error) {
	query := applyApplicationFilter(r.baseQuery(ctx), filter)

	countQuery := applyApplicationFilter(r.db.WithContext(ctx).Model(&models.Application{}), filter)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query.Order("applied_at DESC").Order("id DESC"), filter.Page, filter.PageSize)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (models.Application, error) {
	var application models.Application
	if err := r.baseQuery(ctx).First(&application, id).Error; err != nil {
		return models.Application{}, err
	}

	return application, nil
}

func (r *applicationRepository) GetByOpportunityAndStudent(ctx context.Context, opportunityID, studentID uint) (models.Application, error) {
	var application models.Application
	if err := r.baseQuery(ctx).
		Where("opportunity_id = ?", opportunityID).
		Where("student_id = ?", studentID).
		First(&application).Error; err != nil {
		return models.Application{}, err
	}

	return application, nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context, filter ApplicationFilter) ([]StatusCount, error) {
	var rows []StatusCount
	query := applyApplicationFilter(r.db.WithContext(ctx).Model(&models.Application{}), filter)
	if err := query.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// CountByResume counts applications whose resume snapshot points at the stored asset.
func (r *applicationRepository) CountByResume(ctx context.Context, publicID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where(datatypes.JSONQuery("resume_snapshot").Equals(publicID, "public_id")).
		Count(&total).Error
	return total, err
}

// Create persists the application together with its initial history entries in one transaction.
// A violation of the (opportunity, student) unique index is reported as ErrDuplicate.
func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Opportunity", "Student", "Alumni").Create(application).Error
	})
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Transition applies a compare-and-set on the status column and appends the history entry
// in the same transaction. ErrStatusConflict means the stored status no longer equals change.From.
func (r *applicationRepository) Transition(ctx context.Context, id uint, change ApplicationTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     change.To,
			"updated_at": change.Entry.ChangedAt,
		}
		if change.ShortlistedAt != nil {
			updates["shortlisted_at"] = *change.ShortlistedAt
		}
		if change.ReferredAt != nil {
			updates["referred_at"] = *change.ReferredAt
		}
		if change.RejectedAt != nil {
			updates["rejected_at"] = *change.RejectedAt
		}

		result := tx.Model(&models.Application{}).
			Where("id = ?", id).
			Where("status = ?", change.From).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}

		entry := change.Entry
		entry.ApplicationID = id
		return tx.Create(&entry).Error
	})
}
