package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/models"
	"github.com/noah-isme/referral-go-api/internal/observability"
	"github.com/noah-isme/referral-go-api/internal/repository"
)

const resumeMimeType = "application/pdf"

// FileStorage abstracts resume storage.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (url string, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// ResumeReferences counts application snapshots that still point at a stored resume.
type ResumeReferences interface {
	CountByResume(ctx context.Context, publicID string) (int64, error)
}

// ResumeService manages the student's current resume reference.
// Snapshots on existing applications keep pointing at whatever was on file when they were created,
// so an asset is only removed from storage once no snapshot references it.
type ResumeService interface {
	Get(ctx context.Context, caller StudentCaller) (dto.ResumeResponse, error)
	Upload(ctx context.Context, caller StudentCaller, file *multipart.FileHeader) (dto.StudentResponse, error)
	Delete(ctx context.Context, caller StudentCaller) (dto.StudentResponse, error)
}

type resumeService struct {
	storage    FileStorage
	students   repository.StudentRepository
	references ResumeReferences
	directory  IdentityDirectory
	activity   ActivityRecorder
	maxSize    int64
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewResumeService constructs the resume service.
func NewResumeService(storage FileStorage, students repository.StudentRepository, references ResumeReferences, directory IdentityDirectory, activity ActivityRecorder, maxSizeMB int, logger zerolog.Logger) ResumeService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &resumeService{
		storage:    storage,
		students:   students,
		references: references,
		directory:  directory,
		activity:   activity,
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		logger:     logger.With().Str("component", "resume_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/referral-go-api/internal/service/resume"),
		now:        time.Now,
	}
}

func resumeColumns() []string {
	return []string{"resume_url", "resume_public_id", "resume_uploaded_at", "profile_completeness"}
}

func (s *resumeService) Get(ctx context.Context, caller StudentCaller) (dto.ResumeResponse, error) {
	student, err := s.directory.ResolveStudent(ctx, caller.ID)
	if err != nil {
		return dto.ResumeResponse{}, err
	}
	if !student.HasResume() {
		return dto.ResumeResponse{}, ErrResumeNotFound
	}
	return dto.ResumeResponse{
		URL:        student.ResumeURL,
		PublicID:   student.ResumePublicID,
		UploadedAt: student.ResumeUploadedAt,
	}, nil
}

func (s *resumeService) Upload(ctx context.Context, caller StudentCaller, file *multipart.FileHeader) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "resume.upload")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ResumeUploadLatency().Observe(time.Since(start).Seconds())
	}()

	span.SetAttributes(
		attribute.Int64("student.id", int64(caller.ID)),
		attribute.Int64("upload.max_bytes", s.maxSize),
	)

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.StudentResponse{}, ErrResumeFileMissing
	}
	if file.Size > s.maxSize {
		observability.ResumeUploadRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.StudentResponse{}, ErrResumeTooLarge
	}

	if _, err := s.directory.ResolveStudent(ctx, caller.ID); err != nil {
		span.SetStatus(codes.Error, "student lookup failed")
		return dto.StudentResponse{}, err
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.StudentResponse{}, fmt.Errorf("open resume: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.StudentResponse{}, fmt.Errorf("read resume: %w", err)
	}
	if int64(buf.Len()) > s.maxSize {
		observability.ResumeUploadRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.StudentResponse{}, ErrResumeTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !detected.Is(resumeMimeType) {
		observability.ResumeUploadRejected().WithLabelValues("type").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.StudentResponse{}, ErrResumeType
	}

	url, publicID, err := s.storage.Upload(ctx, resumeFileName(file.Filename), bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.ResumeUploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.StudentResponse{}, fmt.Errorf("store resume: %w", err)
	}

	uploadedAt := s.now().UTC()
	before, student, err := s.students.Mutate(ctx, caller.ID, func(student *models.Student) ([]string, error) {
		student.ResumeURL = url
		student.ResumePublicID = publicID
		student.ResumeUploadedAt = &uploadedAt
		student.ProfileCompleteness = profileCompleteness(*student)
		return resumeColumns(), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		if cleanupErr := s.storage.Delete(ctx, publicID); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("public_id", publicID).Msg("failed to remove orphaned resume")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, fmt.Errorf("save resume reference: %w", err)
	}

	if previous := before.ResumePublicID; previous != "" && previous != publicID {
		s.releaseAsset(ctx, previous)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      caller.Actor(),
		Action:     "resume.uploaded",
		EntityType: "student",
		EntityID:   &student.ID,
		Metadata:   map[string]interface{}{"size_bytes": buf.Len()},
	})

	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Uint("student_id", student.ID).Str("public_id", publicID).Msg("resume uploaded")
	return dto.NewStudentResponse(student), nil
}

// Delete clears the resume reference. The student cannot apply again until a new one is uploaded.
func (s *resumeService) Delete(ctx context.Context, caller StudentCaller) (dto.StudentResponse, error) {
	before, student, err := s.students.Mutate(ctx, caller.ID, func(student *models.Student) ([]string, error) {
		if !student.HasResume() {
			return nil, ErrResumeNotFound
		}
		student.ResumeURL = ""
		student.ResumePublicID = ""
		student.ResumeUploadedAt = nil
		student.ProfileCompleteness = profileCompleteness(*student)
		return resumeColumns(), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrResumeNotFound):
			return dto.StudentResponse{}, ErrResumeNotFound
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.StudentResponse{}, ErrStudentNotFound
		default:
			return dto.StudentResponse{}, fmt.Errorf("clear resume reference: %w", err)
		}
	}

	s.releaseAsset(ctx, before.ResumePublicID)

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      caller.Actor(),
		Action:     "resume.deleted",
		EntityType: "student",
		EntityID:   &student.ID,
	})

	return dto.NewStudentResponse(student), nil
}

func resumeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		base = "resume"
	}
	return base + ".pdf"
}

// releaseAsset deletes a stored resume that is no longer on the profile, unless an application
// snapshot still points at it. Failures are logged; the asset is then left in place.
func (s *resumeService) releaseAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}

	if s.references != nil {
		referenced, err := s.references.CountByResume(ctx, publicID)
		if err != nil {
			s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to check resume references, keeping asset")
			return
		}
		if referenced > 0 {
			s.logger.Debug().Str("public_id", publicID).Int64("applications", referenced).Msg("keeping resume referenced by applications")
			return
		}
	}

	if err := s.storage.Delete(ctx, publicID); err != nil {
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to remove resume asset")
	}
}
