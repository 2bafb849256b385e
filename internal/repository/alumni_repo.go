package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// AlumniRepository defines data operations for alumni accounts.
type AlumniRepository interface {
	GetByID(ctx context.Context, id uint) (models.Alumni, error)
	Create(ctx context.Context, alumni *models.Alumni) error
	Mutate(ctx context.Context, id uint, change AlumniChange) (models.Alumni, error)
}

// AlumniChange edits the locked row in place and returns the columns it touched.
type AlumniChange func(alumni *models.Alumni) ([]string, error)

type alumniRepository struct {
	db *gorm.DB
}

// NewAlumniRepository instantiates the repository.
func NewAlumniRepository(db *gorm.DB) AlumniRepository {
	return &alumniRepository{db: db}
}

func (r *alumniRepository) GetByID(ctx context.Context, id uint) (models.Alumni, error) {
	var alumni models.Alumni
	if err := r.db.WithContext(ctx).Preload("Institution").First(&alumni, id).Error; err != nil {
		return models.Alumni{}, err
	}

	return alumni, nil
}

func (r *alumniRepository) Create(ctx context.Context, alumni *models.Alumni) error {
	if err := r.db.WithContext(ctx).Omit("Institution").Create(alumni).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Mutate locks the row, applies change and writes back only the reported columns.
func (r *alumniRepository) Mutate(ctx context.Context, id uint, change AlumniChange) (models.Alumni, error) {
	var updated models.Alumni
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alumni models.Alumni
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Institution").First(&alumni, id).Error; err != nil {
			return err
		}

		columns, err := change(&alumni)
		if err != nil {
			return err
		}
		if len(columns) > 0 {
			if err := tx.Model(&alumni).Select(append(columns, "updated_at")).Omit("Institution").Updates(&alumni).Error; err != nil {
				return err
			}
		}
		updated = alumni
		return nil
	})
	if err != nil {
		return models.Alumni{}, err
	}
	return updated, nil
}
