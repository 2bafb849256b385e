package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/service"
	"github.com/noah-isme/referral-go-api/internal/utils"
)

// ApplicationHandler serves the apply and review flows.
type ApplicationHandler struct {
	applications service.ApplicationService
	views        service.ApplicationViewService
	logger       zerolog.Logger
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(applications service.ApplicationService, views service.ApplicationViewService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		views:        views,
		logger:       logger.With().Str("component", "application_handler").Logger(),
	}
}

// RegisterStudent wires the apply route under opportunities and the applicant's own views under me.
// applyLimiter may be nil.
func (h *ApplicationHandler) RegisterStudent(opportunities, me fiber.Router, applyLimiter fiber.Handler) {
	if applyLimiter != nil {
		opportunities.Post("/:id/applications", applyLimiter, h.apply)
	} else {
		opportunities.Post("/:id/applications", h.apply)
	}
	me.Get("/applications", h.listMine)
	me.Get("/applications/:id", h.detailForStudent)
}

// RegisterAlumni wires the owner review routes.
func (h *ApplicationHandler) RegisterAlumni(router fiber.Router) {
	router.Get("/opportunities/:id/applications", h.ownerView)
	router.Get("/applications/:id", h.detailForAlumni)
	router.Patch("/applications/:id/status", h.transition)
}

func (h *ApplicationHandler) apply(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid opportunity id")
	}

	application, err := h.applications.Apply(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to submit application")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", application)
}

func (h *ApplicationHandler) listMine(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page parameter")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size parameter")
	}

	view, err := h.views.ApplicantView(c.UserContext(), caller, dto.ApplicationListRequest{Page: page, PageSize: pageSize})
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list applications")
	}

	return utils.SendSuccess(c, "applications retrieved", view)
}

func (h *ApplicationHandler) detailForStudent(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	detail, err := h.views.DetailForStudent(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load application")
	}

	return utils.SendSuccess(c, "application retrieved", detail)
}

func (h *ApplicationHandler) ownerView(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid opportunity id")
	}

	view, err := h.views.OwnerView(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list applications")
	}

	return utils.SendSuccess(c, "applications retrieved", view)
}

func (h *ApplicationHandler) detailForAlumni(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	detail, err := h.views.DetailForAlumni(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load application")
	}

	return utils.SendSuccess(c, "application retrieved", detail)
}

func (h *ApplicationHandler) transition(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.ApplicationTransitionRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	application, err := h.applications.Transition(c.UserContext(), caller, id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update application status")
	}

	return utils.SendSuccess(c, "application status updated", application)
}
