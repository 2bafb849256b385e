package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/referral-go-api/internal/dto"
	"github.com/noah-isme/referral-go-api/internal/service"
	"github.com/noah-isme/referral-go-api/internal/utils"
)

// OpportunityHandler serves referral postings and eligibility checks.
type OpportunityHandler struct {
	opportunities service.OpportunityService
	eligibility   service.EligibilityService
	logger        zerolog.Logger
}

// NewOpportunityHandler constructs an opportunity handler.
func NewOpportunityHandler(opportunities service.OpportunityService, eligibility service.EligibilityService, logger zerolog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opportunities: opportunities,
		eligibility:   eligibility,
		logger:        logger.With().Str("component", "opportunity_handler").Logger(),
	}
}

// RegisterStudent wires the student-facing listing and eligibility routes.
func (h *OpportunityHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.listForStudent)
	router.Get("/:id/eligibility", h.eligibilityCheck)
}

// RegisterAlumni wires the owner's management routes.
func (h *OpportunityHandler) RegisterAlumni(router fiber.Router) {
	router.Post("/opportunities", h.create)
	router.Get("/opportunities", h.listMine)
	router.Patch("/opportunities/:id", h.update)
	router.Delete("/opportunities/:id", h.close)
}

func (h *OpportunityHandler) listForStudent(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	items, err := h.opportunities.ListForStudent(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list opportunities")
	}

	return utils.SendSuccess(c, "opportunities retrieved", items)
}

func (h *OpportunityHandler) eligibilityCheck(c *fiber.Ctx) error {
	caller, ok := studentCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid opportunity id")
	}

	result, err := h.eligibility.Check(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to check eligibility")
	}

	return utils.SendSuccess(c, "eligibility evaluated", result)
}

func (h *OpportunityHandler) create(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	var payload dto.OpportunityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	opportunity, err := h.opportunities.Create(c.UserContext(), caller, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create opportunity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "opportunity created", opportunity)
}

func (h *OpportunityHandler) listMine(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	items, err := h.opportunities.ListMine(c.UserContext(), caller)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list opportunities")
	}

	return utils.SendSuccess(c, "opportunities retrieved", items)
}

func (h *OpportunityHandler) update(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid opportunity id")
	}

	var payload dto.OpportunityUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return sendInvalidPayload(c)
	}

	opportunity, err := h.opportunities.Update(c.UserContext(), caller, id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update opportunity")
	}

	return utils.SendSuccess(c, "opportunity updated", opportunity)
}

func (h *OpportunityHandler) close(c *fiber.Ctx) error {
	caller, ok := alumniCallerFromContext(c)
	if !ok {
		return sendForbiddenCaller(c)
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid opportunity id")
	}

	opportunity, err := h.opportunities.Close(c.UserContext(), caller, id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to close opportunity")
	}

	return utils.SendSuccess(c, "opportunity closed", opportunity)
}
