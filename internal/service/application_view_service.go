package service

import (
	"context"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
)

// ApplicationViewService renders read-only views over applications.
type ApplicationViewService interface {
	OwnerView(ctx context.Context, caller AlumniCaller, opportunityID uint) (dto.OwnerApplicationsView, error)
	ApplicantView(ctx context.Context, caller StudentCaller, request dto.ApplicationListRequest) (dto.StudentApplicationsView, error)
	DetailForStudent(ctx context.Context, caller StudentCaller, applicationID uint) (dto.ApplicationResponse, error)
	DetailForAlumni(ctx context.Context, caller AlumniCaller, applicationID uint) (dto.ApplicationResponse, error)
}

// PageDefaults bounds the applicant view page window.
type PageDefaults struct {
	Size int
	Max  int
}

type applicationViewService struct {
	applications ApplicationService
	pages        PageDefaults
}

// NewApplicationViewService constructs the view builder.
func NewApplicationViewService(applications ApplicationService, pages PageDefaults) ApplicationViewService {
	if pages.Size <= 0 {
		pages.Size = 10
	}
	if pages.Max < pages.Size {
		pages.Max = pages.Size
	}
	return &applicationViewService{applications: applications, pages: pages}
}

// OwnerView partitions every application of the opportunity by status. All stays newest-applied first.
func (s *applicationViewService) OwnerView(ctx context.Context, caller AlumniCaller, opportunityID uint) (dto.OwnerApplicationsView, error) {
	opportunity, applications, err := s.applications.ListForOpportunity(ctx, caller, opportunityID)
	if err != nil {
		return dto.OwnerApplicationsView{}, err
	}

	view := dto.OwnerApplicationsView{
		Opportunity: dto.NewOpportunitySummary(opportunity),
		Total:       len(applications),
		All:         dto.NewApplicationResponseSlice(applications),
		Grouped: dto.ApplicationBuckets{
			Applied:     []dto.ApplicationResponse{},
			Shortlisted: []dto.ApplicationResponse{},
			Referred:    []dto.ApplicationResponse{},
			Rejected:    []dto.ApplicationResponse{},
		},
	}

	for _, item := range view.All {
		status := models.ApplicationStatus(item.Status)
		view.Counts.Add(status, 1)
		switch status {
		case models.ApplicationStatusApplied:
			view.Grouped.Applied = append(view.Grouped.Applied, item)
		case models.ApplicationStatusShortlisted:
			view.Grouped.Shortlisted = append(view.Grouped.Shortlisted, item)
		case models.ApplicationStatusReferred:
			view.Grouped.Referred = append(view.Grouped.Referred, item)
		case models.ApplicationStatusRejected:
			view.Grouped.Rejected = append(view.Grouped.Rejected, item)
		}
	}

	return view, nil
}

// ApplicantView returns one page of the student's applications. Summary always covers the full set.
func (s *applicationViewService) ApplicantView(ctx context.Context, caller StudentCaller, request dto.ApplicationListRequest) (dto.StudentApplicationsView, error) {
	page := request.Page
	if page <= 0 {
		page = 1
	}
	pageSize := request.PageSize
	if pageSize <= 0 {
		pageSize = s.pages.Size
	}
	if pageSize > s.pages.Max {
		pageSize = s.pages.Max
	}

	applications, total, err := s.applications.ListForStudent(ctx, caller, page, pageSize)
	if err != nil {
		return dto.StudentApplicationsView{}, err
	}

	summary, err := s.applications.SummaryForStudent(ctx, caller)
	if err != nil {
		return dto.StudentApplicationsView{}, err
	}

	return dto.StudentApplicationsView{
		Items:      dto.NewApplicationResponseSlice(applications),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
		Summary:    summary,
	}, nil
}

func (s *applicationViewService) DetailForStudent(ctx context.Context, caller StudentCaller, applicationID uint) (dto.ApplicationResponse, error) {
	application, err := s.applications.GetForApplicant(ctx, caller, applicationID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	return dto.NewApplicationResponse(application), nil
}

func (s *applicationViewService) DetailForAlumni(ctx context.Context, caller AlumniCaller, applicationID uint) (dto.ApplicationResponse, error) {
	application, err := s.applications.GetForOwner(ctx, caller, applicationID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	return dto.NewApplicationResponse(application), nil
}
