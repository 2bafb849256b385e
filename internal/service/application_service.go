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
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/observability"
	"github.com/noah-isme/referral-go-api/internal/repository"
)

const maxTransitionAttempts = 3

// ApplicationService creates applications and moves them through the referral pipeline.
type ApplicationService interface {
	Apply(ctx context.Context, caller StudentCaller, opportunityID uint) (dto.ApplicationResponse, error)
	Transition(ctx context.Context, caller AlumniCaller, applicationID uint, payload dto.ApplicationTransitionRequest) (dto.ApplicationResponse, error)

	GetForApplicant(ctx context.Context, caller StudentCaller, applicationID uint) (models.Application, error)
	GetForOwner(ctx context.Context, caller AlumniCaller, applicationID uint) (models.Application, error)
	ListForOpportunity(ctx context.Context, caller AlumniCaller, opportunityID uint) (models.Opportunity, []models.Application, error)
	ListForStudent(ctx context.Context, caller StudentCaller, page, pageSize int) ([]models.Application, int64, error)
	SummaryForStudent(ctx context.Context, caller StudentCaller) (dto.StatusCounts, error)
}

type applicationService struct {
	repo        repository.ApplicationRepository
	eligibility EligibilityService
	registry    OpportunityRegistry
	activity    ActivityRecorder
	cache       *SummaryCache
	validator   *validator.Validate
	policy      *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewApplicationService constructs the lifecycle engine.
func NewApplicationService(
	repo repository.ApplicationRepository,
	eligibility EligibilityService,
	registry OpportunityRegistry,
	activity ActivityRecorder,
	cache *SummaryCache,
	validate *validator.Validate,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationService{
		repo:        repo,
		eligibility: eligibility,
		registry:    registry,
		activity:    activity,
		cache:       cache,
		validator:   validate,
		policy:      bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "application_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/referral-go-api/internal/service/application"),
		now:         time.Now,
	}
}

// Apply creates an Applied application with snapshots of the student's profile and resume.
// Concurrent applies for the same pair resolve to exactly one success; the loser gets ErrDuplicateApplication.
func (s *applicationService) Apply(ctx context.Context, caller StudentCaller, opportunityID uint) (dto.ApplicationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "application.apply")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("student.id", int64(caller.ID)),
		attribute.Int64("opportunity.id", int64(opportunityID)),
	)

	result, err := s.eligibility.Evaluate(ctx, caller.ID, opportunityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "eligibility lookup failed")
		return dto.ApplicationResponse{}, err
	}
	if !result.Allowed() {
		span.SetStatus(codes.Error, result.Denial.Reason)
		return dto.ApplicationResponse{}, result.Denial
	}

	if _, err := s.repo.GetByOpportunityAndStudent(ctx, opportunityID, caller.ID); err == nil {
		span.SetStatus(codes.Error, "duplicate")
		return dto.ApplicationResponse{}, ErrDuplicateApplication
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate check failed")
		return dto.ApplicationResponse{}, fmt.Errorf("check existing application: %w", err)
	}

	now := s.now().UTC()
	application := newApplication(result.Student, result.Opportunity, now)

	if err := s.repo.Create(ctx, &application); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			span.SetStatus(codes.Error, "duplicate")
			return dto.ApplicationResponse{}, ErrDuplicateApplication
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return dto.ApplicationResponse{}, fmt.Errorf("create application: %w", err)
	}

	created, err := s.repo.GetByID(ctx, application.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return dto.ApplicationResponse{}, fmt.Errorf("reload application: %w", err)
	}

	observability.ApplicationsCreated().Inc()
	s.cache.Invalidate(ctx, caller.ID)
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      caller.Actor(),
		Action:     "application.created",
		EntityType: "application",
		EntityID:   &created.ID,
		Metadata: map[string]interface{}{
			"opportunity_id": opportunityID,
		},
	})

	span.SetAttributes(attribute.Int64("application.id", int64(created.ID)))
	s.logger.Info().
		Uint("application_id", created.ID).
		Uint("student_id", caller.ID).
		Uint("opportunity_id", opportunityID).
		Msg("application created")

	return dto.NewApplicationResponse(created), nil
}

func newApplication(student models.Student, opportunity models.Opportunity, now time.Time) models.Application {
	skills := append([]string{}, student.Skills...)

	return models.Application{
		OpportunityID: opportunity.ID,
		StudentID:     student.ID,
		AlumniID:      opportunity.AlumniID,
		Status:        models.ApplicationStatusApplied,
		ProfileSnapshot: datatypes.NewJSONType(models.ProfileSnapshot{
			FirstName:           student.FirstName,
			LastName:            student.LastName,
			Email:               student.Email,
			Branch:              student.Branch,
			GraduationYear:      student.GraduationYear,
			Skills:              skills,
			ProfileCompleteness: student.ProfileCompleteness,
		}),
		ResumeSnapshot: datatypes.NewJSONType(models.ResumeSnapshot{
			URL:        student.ResumeURL,
			PublicID:   student.ResumePublicID,
			UploadedAt: student.ResumeUploadedAt,
		}),
		AppliedAt: now,
		History: []models.ApplicationStatusHistory{
			{Status: models.ApplicationStatusApplied, ChangedAt: now},
		},
	}
}

// Transition moves an application to the requested status on behalf of the opportunity owner.
// The write is conditional on the status read; on a lost race the guards are re-evaluated
// against the fresh state so the caller sees the specific reason.
func (s *applicationService) Transition(ctx context.Context, caller AlumniCaller, applicationID uint, payload dto.ApplicationTransitionRequest) (dto.ApplicationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "application.transition")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("application.id", int64(applicationID)),
		attribute.Int64("alumni.id", int64(caller.ID)),
		attribute.String("application.target_status", payload.Status),
	)

	// Ownership is checked before the payload is validated.
	application, err := s.GetForOwner(ctx, caller, applicationID)
	if err != nil {
		span.SetStatus(codes.Error, "lookup failed")
		return dto.ApplicationResponse{}, err
	}

	target := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
	payload.Status = string(target)
	if target == models.ApplicationStatusApplied || !target.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return dto.ApplicationResponse{}, ErrInvalidTargetStatus
	}
	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.ApplicationResponse{}, err
	}
	note := strings.TrimSpace(s.policy.Sanitize(payload.Note))

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		if attempt > 1 {
			application, err = s.GetForOwner(ctx, caller, applicationID)
			if err != nil {
				span.SetStatus(codes.Error, "lookup failed")
				return dto.ApplicationResponse{}, err
			}
		}

		change, err := planTransition(application, target, note, s.now().UTC())
		if err != nil {
			span.SetStatus(codes.Error, ReasonOf(err))
			return dto.ApplicationResponse{}, err
		}

		err = s.repo.Transition(ctx, application.ID, change)
		if errors.Is(err, repository.ErrStatusConflict) {
			s.logger.Debug().Uint("application_id", applicationID).Int("attempt", attempt).Msg("transition lost race, re-evaluating")
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist failed")
			return dto.ApplicationResponse{}, fmt.Errorf("transition application: %w", err)
		}

		updated, err := s.repo.GetByID(ctx, application.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reload failed")
			return dto.ApplicationResponse{}, fmt.Errorf("reload application: %w", err)
		}

		observability.ApplicationTransitions().WithLabelValues(string(target)).Inc()
		s.cache.Invalidate(ctx, updated.StudentID)
		recordActivity(ctx, s.activity, s.logger, ActivityEntry{
			Actor:      caller.Actor(),
			Action:     "application." + string(target),
			EntityType: "application",
			EntityID:   &updated.ID,
			Metadata: map[string]interface{}{
				"from": string(change.From),
				"to":   string(target),
			},
		})

		s.logger.Info().
			Uint("application_id", updated.ID).
			Str("from", string(change.From)).
			Str("to", string(target)).
			Msg("application transitioned")

		return dto.NewApplicationResponse(updated), nil
	}

	span.SetStatus(codes.Error, "concurrent update")
	return dto.ApplicationResponse{}, ErrConcurrentUpdate
}

// planTransition applies the guard table to the current state. The first violated guard wins.
func planTransition(application models.Application, target models.ApplicationStatus, note string, now time.Time) (repository.ApplicationTransition, error) {
	current := application.Status
	change := repository.ApplicationTransition{
		From: current,
		To:   target,
		Entry: models.ApplicationStatusHistory{
			Status:    target,
			Note:      note,
			ChangedAt: now,
		},
	}

	switch target {
	case models.ApplicationStatusShortlisted:
		switch current {
		case models.ApplicationStatusShortlisted:
			return change, ErrAlreadyShortlisted
		case models.ApplicationStatusReferred:
			return change, ErrAlreadyReferred
		case models.ApplicationStatusRejected:
			return change, ErrAlreadyRejected
		}
		change.ShortlistedAt = &now
	case models.ApplicationStatusReferred:
		switch current {
		case models.ApplicationStatusReferred:
			return change, ErrAlreadyReferred
		case models.ApplicationStatusRejected:
			return change, ErrAlreadyRejected
		}
		change.ReferredAt = &now
		if application.ShortlistedAt == nil {
			change.ShortlistedAt = &now
		}
	case models.ApplicationStatusRejected:
		switch current {
		case models.ApplicationStatusReferred:
			return change, ErrCannotRejectReferred
		case models.ApplicationStatusRejected:
			return change, ErrAlreadyRejected
		}
		change.RejectedAt = &now
	default:
		return change, ErrInvalidTargetStatus
	}

	return change, nil
}

func (s *applicationService) load(ctx context.Context, applicationID uint) (models.Application, error) {
	application, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, fmt.Errorf("load application: %w", err)
	}
	return application, nil
}

func (s *applicationService) GetForApplicant(ctx context.Context, caller StudentCaller, applicationID uint) (models.Application, error) {
	application, err := s.load(ctx, applicationID)
	if err != nil {
		return models.Application{}, err
	}
	if application.StudentID != caller.ID {
		return models.Application{}, ErrNotApplicant
	}
	return application, nil
}

// GetForOwner authorizes against the alumni id captured on the application at creation.
func (s *applicationService) GetForOwner(ctx context.Context, caller AlumniCaller, applicationID uint) (models.Application, error) {
	application, err := s.load(ctx, applicationID)
	if err != nil {
		return models.Application{}, err
	}
	if application.AlumniID != caller.ID {
		return models.Application{}, ErrNotApplicationOwner
	}
	return application, nil
}

func (s *applicationService) ListForOpportunity(ctx context.Context, caller AlumniCaller, opportunityID uint) (models.Opportunity, []models.Application, error) {
	opportunity, err := s.registry.Lookup(ctx, opportunityID)
	if err != nil {
		return models.Opportunity{}, nil, err
	}
	if !opportunity.IsOwnedBy(caller.ID) {
		return models.Opportunity{}, nil, ErrNotOpportunityOwner
	}

	applications, _, err := s.repo.List(ctx, repository.ApplicationFilter{OpportunityID: &opportunity.ID})
	if err != nil {
		return models.Opportunity{}, nil, fmt.Errorf("list applications: %w", err)
	}
	return opportunity, applications, nil
}

func (s *applicationService) ListForStudent(ctx context.Context, caller StudentCaller, page, pageSize int) ([]models.Application, int64, error) {
	applications, total, err := s.repo.List(ctx, repository.ApplicationFilter{
		StudentID: &caller.ID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return applications, total, nil
}

// SummaryForStudent counts the student's applications per status over the full set.
func (s *applicationService) SummaryForStudent(ctx context.Context, caller StudentCaller) (dto.StatusCounts, error) {
	if counts, ok := s.cache.Get(ctx, caller.ID); ok {
		return counts, nil
	}
	version, versioned := s.cache.Version(ctx, caller.ID)

	rows, err := s.repo.CountByStatus(ctx, repository.ApplicationFilter{StudentID: &caller.ID})
	if err != nil {
		return dto.StatusCounts{}, fmt.Errorf("count applications: %w", err)
	}

	var counts dto.StatusCounts
	for _, row := range rows {
		counts.Add(row.Status, row.Total)
	}

	if versioned {
		s.cache.Set(ctx, caller.ID, version, counts)
	}
	return counts, nil
}
