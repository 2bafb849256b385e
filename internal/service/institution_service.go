package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/repository"
)

// InstitutionDirectory resolves free-form college names to shared institution records.
type InstitutionDirectory interface {
	Normalize(name string) string
	GetOrCreate(ctx context.Context, name string) (models.Institution, error)
}

type institutionService struct {
	repo   repository.InstitutionRepository
	logger zerolog.Logger
}

// NewInstitutionService constructs the institution directory.
func NewInstitutionService(repo repository.InstitutionRepository, logger zerolog.Logger) InstitutionDirectory {
	return &institutionService{
		repo:   repo,
		logger: logger.With().Str("component", "institution_service").Logger(),
	}
}

func (s *institutionService) Normalize(name string) string {
	return models.NormalizeInstitutionName(name)
}

// GetOrCreate returns the institution whose match key equals the normalized name,
// creating it on first use. The first caller's spelling becomes the display name.
func (s *institutionService) GetOrCreate(ctx context.Context, name string) (models.Institution, error) {
	display := strings.Join(strings.Fields(name), " ")
	key := s.Normalize(name)
	if key == "" {
		return models.Institution{}, ErrInvalidInstitution
	}

	institution, err := s.repo.GetOrCreate(ctx, display, key)
	if err != nil {
		return models.Institution{}, fmt.Errorf("resolve institution: %w", err)
	}

	s.logger.Debug().Uint("institution_id", institution.ID).Str("match_key", key).Msg("institution resolved")
	return institution, nil
}
