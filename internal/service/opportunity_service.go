package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/repository"
)

// OpportunityRegistry looks up referral postings by id.
type OpportunityRegistry interface {
	Lookup(ctx context.Context, id uint) (models.Opportunity, error)
}

// OpportunityService manages referral postings for alumni and lists them for students.
type OpportunityService interface {
	OpportunityRegistry
	Create(ctx context.Context, caller AlumniCaller, payload dto.OpportunityCreateRequest) (dto.OpportunityResponse, error)
	Update(ctx context.Context, caller AlumniCaller, id uint, payload dto.OpportunityUpdateRequest) (dto.OpportunityResponse, error)
	Close(ctx context.Context, caller AlumniCaller, id uint) (dto.OpportunityResponse, error)
	Get(ctx context.Context, id uint) (dto.OpportunityResponse, error)
	ListForStudent(ctx context.Context, caller StudentCaller) ([]dto.OpportunityResponse, error)
	ListMine(ctx context.Context, caller AlumniCaller) ([]dto.OpportunityResponse, error)
}

type opportunityService struct {
	repo      repository.OpportunityRepository
	directory IdentityDirectory
	activity  ActivityRecorder
	validator *validator.Validate
	policy    *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOpportunityService constructs the registry.
func NewOpportunityService(repo repository.OpportunityRepository, directory IdentityDirectory, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) OpportunityService {
	return &opportunityService{
		repo:      repo,
		directory: directory,
		activity:  activity,
		validator: validate,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "opportunity_service").Logger(),
		now:       time.Now,
	}
}

func (s *opportunityService) Lookup(ctx context.Context, id uint) (models.Opportunity, error) {
	opportunity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Opportunity{}, ErrOpportunityNotFound
		}
		return models.Opportunity{}, fmt.Errorf("load opportunity: %w", err)
	}
	return opportunity, nil
}

// Create posts a new opportunity under the caller's institution. New postings are always open.
func (s *opportunityService) Create(ctx context.Context, caller AlumniCaller, payload dto.OpportunityCreateRequest) (dto.OpportunityResponse, error) {
	if payload.ReferralTarget < 1 {
		return dto.OpportunityResponse{}, ErrInvalidReferrals
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.OpportunityResponse{}, err
	}

	alumni, err := s.directory.ResolveAlumni(ctx, caller.ID)
	if err != nil {
		return dto.OpportunityResponse{}, err
	}

	opportunity := models.Opportunity{
		JobTitle:        strings.TrimSpace(payload.JobTitle),
		Description:     s.sanitize(payload.Description),
		RequiredSkills:  normalizeSkills(payload.RequiredSkills),
		ExperienceLevel: strings.TrimSpace(payload.ExperienceLevel),
		ReferralTarget:  payload.ReferralTarget,
		AlumniID:        alumni.ID,
		InstitutionID:   alumni.InstitutionID,
		Status:          models.OpportunityStatusOpen,
	}

	if err := s.repo.Create(ctx, &opportunity); err != nil {
		return dto.OpportunityResponse{}, fmt.Errorf("create opportunity: %w", err)
	}

	opportunity.Alumni = alumni
	opportunity.Institution = alumni.Institution

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      caller.Actor(),
		Action:     "opportunity.created",
		EntityType: "opportunity",
		EntityID:   &opportunity.ID,
		Metadata:   map[string]interface{}{"job_title": opportunity.JobTitle},
	})

	s.logger.Info().Uint("opportunity_id", opportunity.ID).Uint("alumni_id", alumni.ID).Msg("opportunity created")
	return dto.NewOpportunityResponse(opportunity), nil
}

// Update edits the caller's own posting. Closed postings may still be edited but stay closed.
func (s *opportunityService) Update(ctx context.Context, caller AlumniCaller, id uint, payload dto.OpportunityUpdateRequest) (dto.OpportunityResponse, error) {
	if payload.ReferralTarget != nil && *payload.ReferralTarget < 1 {
		return dto.OpportunityResponse{}, ErrInvalidReferrals
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.OpportunityResponse{}, err
	}

	opportunity, err := s.Lookup(ctx, id)
	if err != nil {
		return dto.OpportunityResponse{}, err
	}
	if !opportunity.IsOwnedBy(caller.ID) {
		return dto.OpportunityResponse{}, ErrNotOpportunityOwner
	}

	if payload.JobTitle != nil {
		opportunity.JobTitle = strings.TrimSpace(*payload.JobTitle)
	}
	if payload.Description != nil {
		opportunity.Description = s.sanitize(*payload.Description)
	}
	if payload.RequiredSkills != nil {
		opportunity.RequiredSkills = normalizeSkills(payload.RequiredSkills)
	}
	if payload.ExperienceLevel != nil {
		opportunity.ExperienceLevel = strings.TrimSpace(*payload.ExperienceLevel)
	}
	if payload.ReferralTarget != nil {
		opportunity.ReferralTarget = *payload.ReferralTarget
	}
	opportunity.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &opportunity); err != nil {
		return dto.OpportunityResponse{}, fmt.Errorf("update opportunity: %w", err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      caller.Actor(),
		Action:     "opportunity.updated",
		EntityType: "opportunity",
		EntityID:   &opportunity.ID,
	})

	return dto.NewOpportunityResponse(opportunity), nil
}

// Close soft-deletes the posting. Closing an already closed posting is a no-op.
func (s *opportunityService) Close(ctx context.Context, caller AlumniCaller, id uint) (dto.OpportunityResponse, error) {
	opportunity, err := s.Lookup(ctx, id)
	if err != nil {
		return dto.OpportunityResponse{}, err
	}
	if !opportunity.IsOwnedBy(caller.ID) {
		return dto.OpportunityResponse{}, ErrNotOpportunityOwner
	}
	if !opportunity.IsOpen() {
		return dto.NewOpportunityResponse(opportunity), nil
	}

	if err := s.repo.SetStatus(ctx, opportunity.ID, models.OpportunityStatusClosed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OpportunityResponse{}, ErrOpportunityNotFound
		}
		return dto.OpportunityResponse{}, fmt.Errorf("close opportunity: %w", err)
	}
	opportunity.Status = models.OpportunityStatusClosed

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      caller.Actor(),
		Action:     "opportunity.closed",
		EntityType: "opportunity",
		EntityID:   &opportunity.ID,
	})

	s.logger.Info().Uint("opportunity_id", opportunity.ID).Msg("opportunity closed")
	return dto.NewOpportunityResponse(opportunity), nil
}

func (s *opportunityService) Get(ctx context.Context, id uint) (dto.OpportunityResponse, error) {
	opportunity, err := s.Lookup(ctx, id)
	if err != nil {
		return dto.OpportunityResponse{}, err
	}
	return dto.NewOpportunityResponse(opportunity), nil
}

// ListForStudent returns the open postings of the student's college, newest first.
func (s *opportunityService) ListForStudent(ctx context.Context, caller StudentCaller) ([]dto.OpportunityResponse, error) {
	student, err := s.directory.ResolveStudent(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if student.InstitutionID == nil {
		return []dto.OpportunityResponse{}, nil
	}

	status := models.OpportunityStatusOpen
	opportunities, err := s.repo.List(ctx, repository.OpportunityFilter{
		InstitutionID: student.InstitutionID,
		Status:        &status,
	})
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}

	return dto.NewOpportunityResponseSlice(opportunities), nil
}

// ListMine returns every posting of the caller, closed ones included.
func (s *opportunityService) ListMine(ctx context.Context, caller AlumniCaller) ([]dto.OpportunityResponse, error) {
	opportunities, err := s.repo.List(ctx, repository.OpportunityFilter{AlumniID: &caller.ID})
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return dto.NewOpportunityResponseSlice(opportunities), nil
}

func (s *opportunityService) sanitize(value string) string {
	return strings.TrimSpace(s.policy.Sanitize(value))
}
