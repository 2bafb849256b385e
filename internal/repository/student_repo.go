package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/referral-go-api/internal/models"
)

// StudentRepository defines data operations for student accounts.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Mutate(ctx context.Context, id uint, change StudentChange) (before, after models.Student, err error)
}

// StudentChange edits the locked row in place and returns the columns it touched.
// Returning an error aborts the write.
type StudentChange func(student *models.Student) ([]string, error)

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Preload("Institution").First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	if err := r.db.WithContext(ctx).Omit("Institution").Create(student).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Mutate locks the row, applies change and writes back only the reported columns, so concurrent
// edits of other columns are preserved. before is the row as read under the lock.
func (r *studentRepository) Mutate(ctx context.Context, id uint, change StudentChange) (models.Student, models.Student, error) {
	var before, after models.Student
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Institution").First(&student, id).Error; err != nil {
			return err
		}
		before = student
		before.Skills = append(before.Skills[:0:0], student.Skills...)

		columns, err := change(&student)
		if err != nil {
			return err
		}
		if len(columns) == 0 {
			after = student
			return nil
		}

		if err := tx.Model(&student).Select(append(columns, "updated_at")).Omit("Institution").Updates(&student).Error; err != nil {
			return err
		}
		after = student
		return nil
	})
	if err != nil {
		return models.Student{}, models.Student{}, err
	}
	return before, after, nil
}
