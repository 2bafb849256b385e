package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/service"
	"github.com/noah-isme/referral-go-api/internal/utils"
)

// DirectoryHandler serves account registration, student profiles and resumes.
type DirectoryHandler struct {
	directory service.DirectoryService
	resumes   service.ResumeService
	logger    zerolog.Logger
}

// NewDirectoryHandler constructs a directory handler.
func NewDirectoryHandler(directory service.DirectoryService, resumes service.ResumeService, logger zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		resumes:   resumes,
		logger:    logger.With().Str("component", "directory_handler").Logger(),
	}
}

// RegisterPublic wires the unauthenticated registration routes.
func (h *DirectoryHandler) RegisterPublic(router fiber.Router) {
	router.Post("/students", h.registerStudent)
	router.Post("/alumni", h.registerAlumni)
}

// RegisterStudent wires the caller's own profile routes.
func (h *DirectoryHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.profile)
	router.Patch("", h.updateProfile)
	router.Get("/status", h.profileStatus)
	router.Get("/resume", h.resume)
	router.Post("/resume", h.uploadResume)
	router.Delete("/resume", h.deleteResume)
}

// RegisterAlumni wires the alumni's own profile and their view of student profiles.
func (h *DirectoryHandler) RegisterAlumni(router fiber.Router) {
	router.Get("/me", h.alumniProfile)
	router.Patch("/me", h.updateAlumniProfile)
	router.Get("/students/:id", h.studentForAlumni)
}

func (h *DirectoryHandler) registerStudent(c *fiber.Ctx) error {
	var payload dto.StudentRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	student, err := h.directory.RegisterStudent(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to register student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student registered", student)
}

func (h *DirectoryHandler) registerAlumni(c *fiber.Ctx) error {
	var payload dto.AlumniRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	alumni, err := h.directory.RegisterAlumni(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to register alumni")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "alumni registered", alumni)
}

func (h *DirectoryHandler) profile(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	student, err := h.directory.GetStudentProfile(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", student)
}

func (h *DirectoryHandler) updateProfile(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	var payload dto.StudentProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	student, err := h.directory.UpdateStudentProfile(c.UserContext(), caller, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update profile")
	}

	return utils.SendSuccess(c, "profile updated", student)
}

func (h *DirectoryHandler) profileStatus(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	status, err := h.directory.GetProfileStatus(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load profile status")
	}

	return utils.SendSuccess(c, "profile status retrieved", status)
}

func (h *DirectoryHandler) resume(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	resume, err := h.resumes.Get(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load resume")
	}

	return utils.SendSuccess(c, "resume retrieved", resume)
}

func (h *DirectoryHandler) uploadResume(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return utils.SendErrorWithReason(c, fiber.StatusBadRequest, service.ErrResumeFileMissing.Reason, service.ErrResumeFileMissing.Message)
	}

	student, err := h.resumes.Upload(c.UserContext(), caller, file)
	if err != nil {
		if errors.Is(err, service.ErrResumeTooLarge) {
			return utils.SendErrorWithReason(c, fiber.StatusRequestEntityTooLarge, service.ErrResumeTooLarge.Reason, err.Error())
		}
		return sendServiceError(c, h.logger, err, "failed to upload resume")
	}

	return utils.SendSuccess(c, "resume uploaded", student)
}

func (h *DirectoryHandler) deleteResume(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	student, err := h.resumes.Delete(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete resume")
	}

	return utils.SendSuccess(c, "resume deleted", student)
}

func (h *DirectoryHandler) studentForAlumni(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	student, err := h.directory.StudentProfileForAlumni(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load student profile")
	}

	return utils.SendSuccess(c, "student profile retrieved", student)
}

func (h *DirectoryHandler) alumniProfile(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	alumni, err := h.directory.GetAlumniProfile(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load alumni profile")
	}

	return utils.SendSuccess(c, "profile retrieved", alumni)
}

func (h *DirectoryHandler) updateAlumniProfile(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	var payload dto.AlumniProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	alumni, err := h.directory.UpdateAlumniProfile(c.UserContext(), caller, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update alumni profile")
	}

	return utils.SendSuccess(c, "profile updated", alumni)
}
