package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/observability"
)

// EligibilityResult is the outcome of matching a student against an opportunity.
// Denial is nil when the student may apply.
type EligibilityResult struct {
	Student     models.Student
	Opportunity models.Opportunity
	Denial      *Error
}

// Allowed reports whether the student may apply.
func (r EligibilityResult) Allowed() bool {
	return r.Denial == nil
}

// EligibilityService decides whether a student may apply to an opportunity.
type EligibilityService interface {
	// Evaluate returns a NotFound error when either party is missing. Ineligibility is
	// reported through the result, never as an error.
	Evaluate(ctx context.Context, studentID, opportunityID uint) (EligibilityResult, error)
	Check(ctx context.Context, caller StudentCaller, opportunityID uint) (dto.EligibilityResponse, error)
}

type eligibilityService struct {
	directory IdentityDirectory
	registry  OpportunityRegistry
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewEligibilityService constructs the matcher.
func NewEligibilityService(directory IdentityDirectory, registry OpportunityRegistry, logger zerolog.Logger) EligibilityService {
	return &eligibilityService{
		directory: directory,
		registry:  registry,
		logger:    logger.With().Str("component", "eligibility_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/referral-go-api/internal/service/eligibility"),
	}
}

func (s *eligibilityService) Evaluate(ctx context.Context, studentID, opportunityID uint) (EligibilityResult, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.evaluate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("opportunity.id", int64(opportunityID)),
	)

	student, err := s.directory.ResolveStudent(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student lookup failed")
		return EligibilityResult{}, err
	}

	opportunity, err := s.registry.Lookup(ctx, opportunityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "opportunity lookup failed")
		return EligibilityResult{}, err
	}

	result := EligibilityResult{
		Student:     student,
		Opportunity: opportunity,
		Denial:      matchEligibility(student, opportunity),
	}

	if !result.Allowed() {
		observability.EligibilityDenials().WithLabelValues(result.Denial.Reason).Inc()
		span.SetAttributes(attribute.String("eligibility.denial", result.Denial.Reason))
		s.logger.Debug().
			Uint("student_id", studentID).
			Uint("opportunity_id", opportunityID).
			Str("reason", result.Denial.Reason).
			Msg("eligibility denied")
	}
	span.SetAttributes(attribute.Bool("eligibility.allowed", result.Allowed()))

	return result, nil
}

func (s *eligibilityService) Check(ctx context.Context, caller StudentCaller, opportunityID uint) (dto.EligibilityResponse, error) {
	result, err := s.Evaluate(ctx, caller.ID, opportunityID)
	if err != nil {
		return dto.EligibilityResponse{}, err
	}

	response := dto.EligibilityResponse{
		OpportunityID: opportunityID,
		Eligible:      result.Allowed(),
	}
	if result.Denial != nil {
		response.Reason = result.Denial.Reason
		response.Message = result.Denial.Message
	}
	return response, nil
}

// matchEligibility applies the checks in a fixed order and returns the first failing one.
// Skills and experience never restrict eligibility.
func matchEligibility(student models.Student, opportunity models.Opportunity) *Error {
	if !opportunity.IsOpen() {
		return ErrIneligibleClosed
	}
	if !student.HasResume() {
		return ErrIneligibleResumeRequired
	}
	key := student.InstitutionMatchKey()
	if key == "" || key != opportunity.Institution.MatchKey {
		return ErrIneligibleInstitution
	}
	return nil
}
