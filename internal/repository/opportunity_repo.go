package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// OpportunityFilter allows narrowing opportunity queries.
type OpportunityFilter struct {
	AlumniID      *uint
	InstitutionID *uint
	Status        *models.OpportunityStatus
}

// OpportunityRepository defines data operations for referral postings.
type OpportunityRepository interface {
	List(ctx context.Context, filter OpportunityFilter) ([]models.Opportunity, error)
	GetByID(ctx context.Context, id uint) (models.Opportunity, error)
	Create(ctx context.Context, opportunity *models.Opportunity) error
	Update(ctx context.Context, opportunity *models.Opportunity) error
	SetStatus(ctx context.Context, id uint, status models.OpportunityStatus) error
}

type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository instantiates the repository.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Opportunity{}).
		Preload("Alumni").
		Preload("Institution")
}

func (r *opportunityRepository) List(ctx context.Context, filter OpportunityFilter) ([]models.Opportunity, error) {
	query := r.baseQuery(ctx)

	if filter.AlumniID != nil {
		query = query.Where("alumni_id = ?", *filter.AlumniID)
	}

	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var opportunities []models.Opportunity
	if err := query.Order("created_at DESC").Order("id DESC").Find(&opportunities).Error; err != nil {
		return nil, err
	}

	return opportunities, nil
}

func (r *opportunityRepository) GetByID(ctx context.Context, id uint) (models.Opportunity, error) {
	var opportunity models.Opportunity
	if err := r.baseQuery(ctx).First(&opportunity, id).Error; err != nil {
		return models.Opportunity{}, err
	}

	return opportunity, nil
}

func (r *opportunityRepository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Omit("Alumni", "Institution").Create(opportunity).Error
}

func (r *opportunityRepository) Update(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Model(&models.Opportunity{}).
		Where("id = ?", opportunity.ID).
		Select("job_title", "description", "required_skills", "experience_level", "referral_target", "updated_at").
		Updates(opportunity).Error
}

func (r *opportunityRepository) SetStatus(ctx context.Context, id uint, status models.OpportunityStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Opportunity{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
