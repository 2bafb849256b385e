package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// InstitutionRepository persists institutions keyed by their match key.
type InstitutionRepository interface {
	GetOrCreate(ctx context.Context, name, matchKey string) (models.Institution, error)
	GetByMatchKey(ctx context.Context, matchKey string) (models.Institution, error)
	GetByID(ctx context.Context, id uint) (models.Institution, error)
}

type institutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository instantiates the repository.
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &institutionRepository{db: db}
}

// GetOrCreate inserts the institution unless the match key already exists and returns the stored row.
// Concurrent callers with the same key all observe the same record.
func (r *institutionRepository) GetOrCreate(ctx context.Context, name, matchKey string) (models.Institution, error) {
	institution := models.Institution{Name: name, MatchKey: matchKey}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "match_key"}}, DoNothing: true}).
		Create(&institution).Error; err != nil {
		return models.Institution{}, err
	}

	return r.GetByMatchKey(ctx, matchKey)
}

func (r *institutionRepository) GetByMatchKey(ctx context.Context, matchKey string) (models.Institution, error) {
	var institution models.Institution
	if err := r.db.WithContext(ctx).Where("match_key = ?", matchKey).First(&institution).Error; err != nil {
		return models.Institution{}, err
	}

	return institution, nil
}

func (r *institutionRepository) GetByID(ctx context.Context, id uint) (models.Institution, error) {
	var institution models.Institution
	if err := r.db.WithContext(ctx).First(&institution, id).Error; err != nil {
		return models.Institution{}, err
	}

	return institution, nil
}
